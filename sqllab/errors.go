package sqllab

import "fmt"

// QueryLimitReached reports that the server truncated the result set at
// its display limit. Lower the query limit or add LIMIT/OFFSET to the
// statement to get a complete result.
type QueryLimitReached struct {
	DisplayLimit int
}

func (e *QueryLimitReached) Error() string {
	return fmt.Sprintf(
		"query exceeded the maximum number of rows that can be returned (%d); "+
			"set a lower query limit or add LIMIT / OFFSET keywords to the SQL statement",
		e.DisplayLimit,
	)
}
