// Package feed is the demo domain of the eventfeed service: a stream of
// system statuses and business operations, and the per-viewer stages that
// hide, bound and render them.
//
//	events := iteratee.Broadcast[feed.Event](feed.NewSource(cfg), true)
//	iteratee.Join(events, iteratee.Transform(feed.View(role, 0, 500), sink))
package feed
