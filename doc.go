// Package correlate implements request/response correlation for MQTT v5.0
// message inspection.
//
// MQTT v5.0 request/response (spec section 4.10) matches a response to its
// originating request through two publish properties: correlation data and
// response topic. This package indexes pending requests by that pair, links
// incoming responses to them, tracks a per-request lifecycle status, expires
// stale requests under a TTL, and resolves textual navigation commands that
// jump from a request to its latest linked response.
//
// # Correlation
//
// MessageCorrelationService owns the index. Register outgoing requests and
// link incoming responses as messages arrive:
//
//	svc := correlate.NewMessageCorrelationService()
//	ok, _ := svc.RegisterRequest("req-1", []byte("abc"), "resp/topic")
//	ok, _ = svc.LinkResponse("r-1", []byte("abc"), "resp/topic")
//	status, _ := svc.ResponseStatus("req-1") // StatusReceived
//
// Duplicate correlation keys, orphan responses and expired requests are
// expected traffic, not errors: they surface as false returns and status
// values, never as panics or error returns.
//
// # Navigation
//
// ResponseNavigationService turns a request id into a "select this message"
// action, validating that the response topic is still subscribed and that
// the response message is still retrievable:
//
//	nav := correlate.NewResponseNavigationService(svc, subs, store, selector)
//	result := nav.ExecuteNavigationCommand(":gotoresponse req-1")
//
// # Icons
//
// ResponseIconService projects correlation status into a small view model
// (icon path, tooltip, clickable flag) for the message list, and translates
// icon clicks into navigation.
//
// # Expiry
//
// CleanupScheduler sweeps expired correlations on an interval:
//
//	sched := correlate.NewCleanupScheduler(svc, time.Minute)
//	sched.Start()
//	defer sched.Stop()
//
// All services are safe for concurrent use. Notifications fire synchronously
// on the goroutine that caused the transition; subscribers marshal to a UI
// thread themselves and must not block.
package correlate
