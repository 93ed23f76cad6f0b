// Package paginate holds the page arithmetic shared by the catalog service
// and the engines.
package paginate

// Pages returns ceil(total/limit), or 0 when total is 0. A page number beyond
// this count is not an error; it simply selects an empty window.
func Pages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Offset converts a 1-based page number into the engine's document offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
