package schoology

import "context"

// Pager walks a feed endpoint through its links.next pagination protocol.
// Each Next call fetches exactly one page; the walk ends after the first
// page that carries no links.next. The next URL is used exactly as the
// server supplied it, since it already encodes cursor and offset state.
type Pager struct {
	client *Client
	next   string
	done   bool
}

// NewPager creates a pager starting at the given feed URL.
func NewPager(client *Client, startURL string) *Pager {
	return &Pager{
		client: client,
		next:   startURL,
	}
}

// HasNext reports whether another page remains to be fetched.
func (p *Pager) HasNext() bool {
	return !p.done
}

// Next fetches the next page. Any transport or parse failure aborts the
// walk; a pager is not resumable after an error.
func (p *Pager) Next(ctx context.Context) (Node, error) {
	page, err := p.client.GetNode(ctx, p.next)
	if err != nil {
		p.done = true
		return nil, err
	}

	if next, ok := page.NextLink(); ok {
		p.next = next
	} else {
		p.done = true
	}

	return page, nil
}
