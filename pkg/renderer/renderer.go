// Package renderer implements the Event Loop (spec §4.7): the single
// cooperative goroutine that owns every renderer-wide mutable structure
// (the endpoint registry, the handle arena, every workspace tree) and is
// the only goroutine that ever calls into the dispatcher or the
// back-end callback vtable.
//
// Blocking transport reads run on one goroutine per connected endpoint,
// forwarding complete messages to the loop over a channel — the single
// safe cross-goroutine handoff point the concurrency model allows (spec
// §5). The loop itself never blocks on a transport read; responses,
// events and pings are written from the loop.
package renderer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hvml/purcmc-go/pkg/archive"
	"github.com/hvml/purcmc-go/pkg/backend"
	"github.com/hvml/purcmc-go/pkg/dispatch"
	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
	"go.opentelemetry.io/otel/trace"
)

// pollInterval is T_POLL (spec §4.7): how often the loop pumps the
// back-end's own event source between inbound messages.
const pollInterval = 10 * time.Millisecond

// sweepInterval is the "elapsed seconds changed" tick that drives
// endpoint liveness sweeping.
const sweepInterval = time.Second

// ErrStopped is returned by Accept once the renderer has shut down.
var ErrStopped = errors.New("renderer: stopped")

// Option configures a Renderer at construction time.
type Option func(*Renderer)

// WithLogger sets the renderer's logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithSweepConfig overrides the endpoint liveness timings. Default is
// endpoint.DefaultSweepConfig().
func WithSweepConfig(cfg endpoint.SweepConfig) Option {
	return func(r *Renderer) { r.sweep = cfg }
}

// WithMetrics attaches a Metrics collector. Default is nil (disabled).
func WithMetrics(m *Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// WithTracer overrides the OpenTelemetry tracer used to wrap dispatch.
// Default is the no-op tracer obtained from the global provider, exactly
// as if no provider had been configured.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) { r.tracer = t }
}

// WithArchive mirrors every inbound request and outbound response/event
// to store. Default is nil (disabled); archive failures are logged and
// never affect dispatch.
func WithArchive(store *archive.Store) Option {
	return func(r *Renderer) { r.archive = store }
}

// WithDirectory records every newly connected endpoint's URI and
// creation time to dir. Default is nil (disabled); the directory is
// advisory only and its failures are logged, never affect acceptance.
func WithDirectory(dir *endpoint.Directory) Option {
	return func(r *Renderer) { r.directory = dir }
}

type inboundMsg struct {
	ep  *endpoint.Endpoint
	msg *protocol.Message
	err error
}

type acceptRequest struct {
	uri       string
	transport protocol.Transport
	result    chan acceptResult
}

type acceptResult struct {
	ep  *endpoint.Endpoint
	err error
}

// Renderer ties the endpoint registry, the handle arena, the back-end
// callback vtable, and the request dispatcher into one running
// instance (spec §2).
type Renderer struct {
	registry   *endpoint.Registry
	arena      *session.Arena
	callbacks  *backend.Callbacks
	dispatcher *dispatch.Dispatcher

	logger    *slog.Logger
	sweep     endpoint.SweepConfig
	metrics   *Metrics
	tracer    trace.Tracer
	archive   *archive.Store
	directory *endpoint.Directory

	inbound chan inboundMsg
	accept  chan acceptRequest
	done    chan struct{}

	archiveSeq uint64
}

// New creates a Renderer bound to cbs, backed by arena for handle
// resolution. arena must be the same arena the back-end behind cbs uses
// to mint handles.
func New(cbs *backend.Callbacks, arena *session.Arena, opts ...Option) *Renderer {
	r := &Renderer{
		registry:   endpoint.NewRegistry(),
		arena:      arena,
		callbacks:  cbs,
		dispatcher: dispatch.New(cbs, arena),
		logger:     slog.Default(),
		sweep:      endpoint.DefaultSweepConfig(),
		tracer:     tracer(),
		inbound:    make(chan inboundMsg, 64),
		accept:     make(chan acceptRequest),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registry.OnDestroySession = r.destroySession
	return r
}

// Registry exposes the endpoint registry for diagnostics (e.g.
// pkg/httpapi's /debug/endpoints view). Callers outside the loop
// goroutine must treat it as read-only.
func (r *Renderer) Registry() *endpoint.Registry { return r.registry }

// Accept registers a newly connected endpoint and starts reading from
// transport. It is safe to call from any goroutine (typically a
// listener's accept loop); registration itself is performed on the
// renderer's own loop goroutine.
func (r *Renderer) Accept(uri string, transport protocol.Transport) (*endpoint.Endpoint, error) {
	req := acceptRequest{uri: uri, transport: transport, result: make(chan acceptResult, 1)}
	select {
	case r.accept <- req:
	case <-r.done:
		return nil, ErrStopped
	}
	res := <-req.result
	return res.ep, res.err
}

// Stop signals Run to shut down and return. It is safe to call more
// than once and from any goroutine.
func (r *Renderer) Stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// Run drives the event loop until ctx is cancelled or Stop is called.
// It calls Callbacks.Prepare before accepting any endpoint and
// Callbacks.Cleanup after every endpoint has been removed, per spec
// §6.1 and the Callbacks.Prepare/Cleanup doc comment.
func (r *Renderer) Run(ctx context.Context) error {
	if r.callbacks.Prepare != nil {
		if err := r.callbacks.Prepare(); err != nil {
			return err
		}
	}

	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		case <-r.done:
			break loop
		case req := <-r.accept:
			r.handleAccept(req)
		case in := <-r.inbound:
			r.handleInbound(in)
		case <-pollTicker.C:
			if r.callbacks.HandleEvent != nil {
				r.callbacks.HandleEvent()
			}
		case <-sweepTicker.C:
			r.runSweep()
		}
	}

	r.shutdown()
	if r.callbacks.Cleanup != nil {
		r.callbacks.Cleanup()
	}
	return runErr
}

func (r *Renderer) handleAccept(req acceptRequest) {
	ep, err := r.registry.New(req.uri, req.transport, time.Now())
	if err == nil {
		r.startReader(ep)
		if r.metrics != nil {
			r.metrics.EndpointConnected()
		}
		r.logger.Info("endpoint connected", "uri", ep.URI)
		if r.directory != nil {
			if derr := r.directory.Record(context.Background(), ep.URI, ep.CreatedAt); derr != nil {
				r.logger.Warn("directory record failed", "uri", ep.URI, "err", derr)
			}
		}
	}
	req.result <- acceptResult{ep: ep, err: err}
}

func (r *Renderer) startReader(ep *endpoint.Endpoint) {
	go func() {
		for {
			msg, err := ep.Transport.Recv()
			select {
			case r.inbound <- inboundMsg{ep: ep, msg: msg, err: err}:
			case <-r.done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
}

func (r *Renderer) handleInbound(in inboundMsg) {
	if in.err != nil {
		r.removeEndpoint(in.ep, endpoint.CauseDisconnect)
		return
	}
	r.registry.UpdateLiving(in.ep, time.Now())

	if in.msg.Type != protocol.TypeRequest {
		r.logger.Warn("dropping non-request message from endpoint", "uri", in.ep.URI, "type", in.msg.Type)
		return
	}
	r.handleRequest(in.ep, in.msg)
}

func (r *Renderer) handleRequest(ep *endpoint.Endpoint, req *protocol.Message) {
	r.recordArchive(ep.URI, archive.DirectionInbound, req)

	_, span := r.startSpan(context.Background(), ep, req)
	start := time.Now()
	resp, events := r.dispatcher.Dispatch(ep, req)
	r.endSpan(span, resp)

	if r.metrics != nil {
		r.metrics.RecordDispatch(req.Operation, resp.RetCode, time.Since(start))
	}

	// Cross-endpoint notifications (suppressPage/reloadPage from a
	// register/revoke) must reach their target before the response to
	// this request goes out, per the documented delivery ordering.
	for _, pe := range events {
		r.deliverEvent(pe)
	}

	if err := ep.Transport.Send(resp); err != nil {
		r.logger.Warn("failed to send response", "uri", ep.URI, "err", err)
		r.removeEndpoint(ep, endpoint.CauseDisconnect)
		return
	}
	r.recordArchive(ep.URI, archive.DirectionOutbound, resp)
}

func (r *Renderer) deliverEvent(pe dispatch.PendingEvent) {
	target, ok := r.registry.Retrieve(pe.EndpointURI)
	if !ok {
		return
	}
	if err := target.Transport.Send(pe.Message); err != nil {
		r.logger.Warn("failed to deliver event", "uri", target.URI, "event", pe.Message.EventName, "err", err)
		r.removeEndpoint(target, endpoint.CauseDisconnect)
		return
	}
	r.recordArchive(target.URI, archive.DirectionOutbound, pe.Message)
	if r.metrics != nil {
		r.metrics.RecordOwnershipEvent(pe.Message.EventName)
	}
}

// recordArchive mirrors msg to the configured archive store, if any.
// Failures are logged, never surfaced to the caller: the archive is a
// diagnostic side channel, not part of protocol correctness.
func (r *Renderer) recordArchive(endpointURI string, dir archive.Direction, msg *protocol.Message) {
	if r.archive == nil {
		return
	}
	r.archiveSeq++
	if err := r.archive.Record(context.Background(), endpointURI, r.archiveSeq, dir, msg); err != nil {
		r.logger.Warn("archive record failed", "uri", endpointURI, "err", err)
	}
}

func (r *Renderer) runSweep() {
	r.registry.Sweep(time.Now(), r.sweep,
		func(ep *endpoint.Endpoint) {
			r.logger.Debug("pinging idle endpoint", "uri", ep.URI)
			if p, ok := ep.Transport.(interface{ Ping() error }); ok {
				if err := p.Ping(); err != nil {
					r.logger.Warn("ping failed", "uri", ep.URI, "err", err)
				}
			}
		},
		func(ep *endpoint.Endpoint) {
			r.logger.Info("endpoint timed out", "uri", ep.URI)
			_ = ep.Transport.Close()
			if r.metrics != nil {
				r.metrics.EndpointDisconnected()
				r.metrics.SweepEviction()
			}
		},
	)
}

func (r *Renderer) removeEndpoint(ep *endpoint.Endpoint, cause endpoint.Cause) {
	r.registry.Del(ep, cause)
	_ = ep.Transport.Close()
	if r.metrics != nil {
		r.metrics.EndpointDisconnected()
	}
}

// destroySession is wired as the registry's OnDestroySession hook: it
// runs on the loop goroutine, just before an endpoint with a live
// session is removed.
func (r *Renderer) destroySession(ep *endpoint.Endpoint) {
	if ep.Session == nil {
		return
	}
	if r.callbacks.RemoveSession != nil {
		_ = r.callbacks.RemoveSession(ep.Session)
	}
	r.arena.Release(ep.Session.Handle)
}

func (r *Renderer) shutdown() {
	var all []*endpoint.Endpoint
	r.registry.ForEachOldestFirst(func(ep *endpoint.Endpoint) bool {
		all = append(all, ep)
		return true
	})
	for _, ep := range all {
		r.registry.Del(ep, endpoint.CauseShutdown)
		_ = ep.Transport.Close()
	}
}
