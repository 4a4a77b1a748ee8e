package core

import "context"

// PageFunc fetches one page of a collection. Implementations must carry every
// caller-supplied filter on every page they fetch, varying only the page
// number.
type PageFunc func(ctx context.Context, page int) (*ListEnvelope, error)

// CollectPages walks a paginated collection from the first page to the last,
// decoding each page's data array into items of type T. It stops when the
// server reports the final page, or when a page carries no pagination facts
// at all.
func CollectPages[T any](ctx context.Context, fetch PageFunc) ([]T, error) {
	var items []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return items, newConnectionError("pagination canceled", err)
		}

		env, err := fetch(ctx, page)
		if err != nil {
			return items, err
		}

		var pageItems []T
		if len(env.Data) > 0 {
			if err := env.Decode(&pageItems); err != nil {
				return items, &APIError{
					Kind:      KindAPI,
					Code:      "DECODE_ERROR",
					Message:   "decode collection page: " + err.Error(),
					RequestID: env.Meta.RequestID,
					Err:       ErrDecode,
				}
			}
		}
		items = append(items, pageItems...)

		// Trust the requested page number over the echoed one: a server
		// stuck reporting the same page must not loop the walk forever.
		p := env.Meta.Pagination
		if p == nil || p.Page >= p.TotalPages || page >= p.TotalPages {
			return items, nil
		}
	}
}
