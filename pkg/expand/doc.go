// Package expand provides depth-bounded concurrent expansion of item trees.
//
// An item may list child ids ("kids", or "submitted" for user profiles).
// The expander fetches one level at a time: all addresses of a level are
// fetched concurrently, then the children of every present item are gathered
// in order and become the next level, until the recursion budget is spent.
// Child ids are unknown until their parents arrive, so levels never overlap.
//
// Example usage:
//
//	c, _ := client.New(client.DefaultConfig())
//	defer c.Close()
//	e := expand.New(c, expand.DefaultConfig())
//	items, err := e.Expand(ctx, []string{"https://hacker-news.firebaseio.com/v0/item/8863.json"}, 2)
//
// The result order for roots [A, B] where A has kids [C, D]:
//
//	[A, B, C, D, <kids of C and D, expanded with budget-2>...]
//
// The expander:
//   - Returns an empty result for empty input without fetching
//   - Keeps absent (null) items as nil entries
//   - Does not deduplicate ids
//   - Fails the whole expansion on the first failed fetch, cancelling the
//     fetches still in flight on that level
package expand
