package dispatch

import (
	"time"

	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"github.com/hvml/purcmc-go/pkg/session"
)

// onStartSession implements startSession (spec §8 S1). A session is
// created fresh on every call, discarding any previous one for this
// endpoint, mirroring the source's "endpoint->session = NULL" reset at
// entry.
func (d *Dispatcher) onStartSession(ep *endpoint.Endpoint, req *protocol.Message) result {
	ep.Session = nil

	sess := session.New(0, ep.URI, time.Now())
	if d.Callbacks.CreateSession != nil {
		if err := d.Callbacks.CreateSession(sess); err != nil {
			return fail(protocol.StatusInsufficientStorage)
		}
	}

	sess.Handle = d.Arena.Issue(sess)
	ep.Session = sess
	return ok(uint64(sess.Handle))
}

// onEndSession implements endSession.
func (d *Dispatcher) onEndSession(ep *endpoint.Endpoint, req *protocol.Message) result {
	if ep.Session != nil {
		if d.Callbacks.RemoveSession != nil {
			_ = d.Callbacks.RemoveSession(ep.Session)
		}
		d.Arena.Release(ep.Session.Handle)
		ep.Session = nil
	}
	return ok(0)
}
