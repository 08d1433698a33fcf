package dashboard

import (
	"context"
	"time"

	"flightdash/internal/engine"
	"flightdash/internal/models"
)

// View is a session's controls plus the figures rendered for them.
type View struct {
	Session  string              `json:"session,omitempty"`
	Controls models.ControlState `json:"controls"`
	Charts   []*models.Figure    `json:"charts"`
}

// Service owns the binder and the per-viewer sessions.
type Service struct {
	binder   *Binder
	sessions *Sessions
}

func NewService(binder *Binder, sessionTTL time.Duration) *Service {
	if binder == nil {
		binder = NewBinder()
	}
	return &Service{binder: binder, sessions: NewSessions(sessionTTL)}
}

func (s *Service) Binder() *Binder { return s.binder }

// Render renders charts for an explicit control state; no ids means all.
func (s *Service) Render(ctx context.Context, ds *engine.Dataset, controls models.ControlState, ids ...ChartID) View {
	if len(ids) == 0 {
		ids = s.binder.Charts()
	}
	return View{Controls: controls, Charts: s.binder.Render(ctx, ds, controls, ids...)}
}

// Open starts a session with default controls and renders every chart.
func (s *Service) Open(ctx context.Context, ds *engine.Dataset) View {
	sess := s.sessions.Create()
	v := s.Render(ctx, ds, sess.Controls)
	v.Session = sess.ID
	return v
}

// Current re-renders every chart for the session's controls.
func (s *Service) Current(ctx context.Context, ds *engine.Dataset, id string) (View, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return View{}, err
	}
	v := s.Render(ctx, ds, sess.Controls)
	v.Session = sess.ID
	return v, nil
}

// Change applies one control change and re-renders only the charts that
// read that control. A change to the current value renders nothing.
func (s *Service) Change(ctx context.Context, ds *engine.Dataset, id string, change ControlChange) (View, error) {
	before, after, err := s.sessions.Update(id, change.Apply)
	if err != nil {
		return View{}, err
	}
	v := View{Session: id, Controls: after, Charts: []*models.Figure{}}
	if before == after {
		return v, nil
	}
	if affected := s.binder.Affected(change.Control); len(affected) > 0 {
		v.Charts = s.binder.Render(ctx, ds, after, affected...)
	}
	return v, nil
}

func (s *Service) Close(id string) bool {
	return s.sessions.Delete(id)
}
