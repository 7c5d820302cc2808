// Package debugserver exposes a time-travel debugger over HTTP.
//
// The application publishes debugger models through a Handle and supplies a
// dispatcher that forwards control actions into its own action loop. The
// server never mutates history or cursor itself.
//
// # Routes
//
//	GET  /               {"size":N,"cursor":C}
//	GET  /step?cursor=N  {"action":A|null,"model":M}, empty body when N > size
//	POST /goto?cursor=N  empty, forwards goto(N) without bounds checks
//	POST /undo           empty, forwards undo
//	POST /redo           empty, forwards redo
//	GET  /healthz        liveness and whether a model has been published
//	GET  /journal        recent control actions (only with WithRecorder)
//
// # Errors
//
// Malformed cursor values answer 400. Reading before the first View, or
// posting a control before SetDispatcher, answers 503. Error bodies are
// {"error":"...","timestamp":"RFC3339"}.
//
// # Lifecycle
//
//	srv := debugserver.NewServer(cfg.Server, debugserver.WithLogger(logger))
//	h, err := debugserver.Enable[string, int](srv)
//	h.SetDispatcher(func(c debugger.Control) { st.Dispatch(debugger.Wrap[string](c)) })
//	st.Watch(h.View)
//
// Enable may be called once per Server and starts listening. Shutdown stops
// it for good; a Server is not restartable.
package debugserver
