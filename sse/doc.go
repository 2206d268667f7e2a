// Package sse serves a broadcast hub to browsers as Server-Sent Events.
//
// Every connection joins the hub with its own view, so two clients of the
// same feed can see different, differently rendered events:
//
//	hub := iteratee.Broadcast[feed.Event](feed.NewSource(cfg), true)
//	stream := sse.NewStream(hub, sse.WithLogger(log))
//	router.GET("/events", stream.Handler(func(c *gin.Context) iteratee.Enumeratee[feed.Event, []byte] {
//		return feed.View(feed.ParseRole(c.Query("role")), 0, 500)
//	}))
//
// A connection starts with a "connected" event carrying the client id, gets a
// keep-alive comment every 30 seconds, and ends with "end" or "error" when the
// hub finishes. A client that goes away detaches from the hub with the next
// element.
package sse
