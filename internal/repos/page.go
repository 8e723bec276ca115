// Package repos holds what the storage packages share.
package repos

// Page selects one window of a list ordered newest first.
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps number to >= 1 and perPage to [1, maxPerPage].
func NewPage(number, perPage, maxPerPage int) Page {
	if number < 1 {
		number = 1
	}

	if perPage < 1 {
		perPage = 1
	}

	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return Page{Number: number, PerPage: perPage}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// Pages returns how many pages total items span.
func (p Page) Pages(total int) int {
	if p.PerPage <= 0 {
		return 0
	}

	return (total + p.PerPage - 1) / p.PerPage
}
