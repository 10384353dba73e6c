// Package collection keeps an in-memory mirror of one server collection and
// mediates every mutation of it.
package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"catalog-admin/internal/model"
	"catalog-admin/internal/notify"
	"catalog-admin/internal/session"
	"catalog-admin/internal/statusutil"
	"catalog-admin/internal/transport"

	"github.com/sirupsen/logrus"
)

const MsgSessionExpired = "Session expired or token is inactive. Please log in again."

// Navigator moves the user to the login screen after a session expires.
type Navigator interface {
	ToLogin()
}

type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// Deps are shared by every store of a console.
type Deps struct {
	Client  *transport.Client
	Session session.Store
	Notify  notify.Notifier
	Nav     Navigator
	Log     logrus.FieldLogger

	// RedirectDelay postpones Nav.ToLogin after an expiry; zero calls it
	// before the failing operation returns.
	RedirectDelay time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Notify == nil {
		d.Notify = notify.Discard
	}
	if d.Nav == nil {
		d.Nav = NavigatorFunc(func() {})
	}
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = l
	}
	return d
}

// Store owns the Collection of one kind. The slice is only written when a
// response arrives; concurrent fetches resolve last-writer-wins.
type Store[T Entity] struct {
	codec Codec[T]
	deps  Deps
	log   logrus.FieldLogger

	mu     sync.RWMutex
	items  []T
	loaded bool
}

func New[T Entity](codec Codec[T], deps Deps) *Store[T] {
	deps = deps.withDefaults()
	return &Store[T]{
		codec: codec,
		deps:  deps,
		log:   deps.Log.WithField("kind", string(codec.Kind())),
	}
}

func (s *Store[T]) Kind() model.Kind { return s.codec.Kind() }

// Items returns a snapshot of the Collection.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loaded reports whether a fetch has succeeded since the store was built.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Get looks an entity up by canonical id. Entities without one are never
// found.
func (s *Store[T]) Get(id model.ID) (T, bool) {
	var zero T
	if !id.Valid() {
		return zero, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.items {
		if e.Key() == id {
			return e, true
		}
	}
	return zero, false
}

// Fetch replaces the Collection with the server's. Any failure other than an
// expired session leaves it empty.
func (s *Store[T]) Fetch(ctx context.Context) error {
	err := s.load(ctx)
	if err == nil || s.expired(err) {
		return err
	}
	s.deps.Notify.Error(failureText("load", s.codec.Kind().Plural(), err))
	return err
}

func (s *Store[T]) load(ctx context.Context) error {
	resp, err := s.deps.Client.Do(ctx, transport.Request{Method: http.MethodGet, Path: s.codec.Path()})
	if err != nil {
		if !transport.IsAuthExpired(err) {
			s.reset(nil)
		}
		s.log.WithError(err).Error("fetch failed")
		return err
	}
	recs, ok := DecodeList(resp.Body, s.codec.Kind())
	if !ok {
		s.reset(nil)
		err := &transport.MalformedResponseError{
			Status:      resp.Status,
			ContentType: resp.Header.Get("Content-Type"),
			Err:         fmt.Errorf("no %s list in a %T body", s.codec.Kind().Plural(), resp.Body),
		}
		s.log.WithError(err).Error("fetch failed")
		return err
	}
	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		items = append(items, Decode(s.codec, rec))
	}
	s.reset(items)
	s.log.WithField("count", len(items)).Debug("fetched")
	return nil
}

func (s *Store[T]) reset(items []T) {
	if items == nil {
		items = []T{}
	}
	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()
}

// Add submits draft and appends the confirmed entity. The Collection is not
// touched when the call fails.
func (s *Store[T]) Add(ctx context.Context, draft T) (T, error) {
	var zero T
	payload := s.codec.Payload(draft, OpCreate)
	if s.codec.Policy().StampUserID && s.deps.Session != nil {
		if uid, ok := s.deps.Session.UserID(); ok {
			payload = payload.With("user_id", uid)
		}
	}
	resp, err := s.deps.Client.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		Path:    s.codec.Path(),
		Payload: payload,
	})
	if err != nil {
		return zero, s.fail(ctx, "add", err, nil)
	}

	created := s.confirm(draft, resp)
	if fu, ok := any(s.codec).(FollowUp[T]); ok {
		created = s.followUp(ctx, fu, draft, created)
	}

	if created.Key().Valid() {
		s.upsert(created)
	} else {
		before := s.Items()
		if err := s.load(ctx); err != nil {
			// The entity exists server-side; keep the pre-add view rather
			// than the empty list a failed fetch leaves.
			s.log.WithError(err).Warn("refetch after add failed")
			if s.expired(err) {
				return created, nil
			}
			s.reset(before)
			s.deps.Notify.Success(s.noun() + " added successfully; reload to see it")
			return created, nil
		}
	}
	s.deps.Notify.Success(s.noun() + " added successfully")
	return created, nil
}

func (s *Store[T]) followUp(ctx context.Context, fu FollowUp[T], draft, created T) T {
	req, ok := fu.AfterCreate(draft, created)
	if !ok {
		return created
	}
	if _, err := s.deps.Client.Do(ctx, req); err != nil {
		s.log.WithError(err).WithField("id", created.Key().String()).Warn("create follow-up failed")
		return created
	}
	return s.codec.SetActive(created, false)
}

// Update submits e as a full replacement of the entity with the same id.
func (s *Store[T]) Update(ctx context.Context, e T) (T, error) {
	var zero T
	if _, ok := s.Get(e.Key()); !ok {
		return zero, s.missing(e.Key())
	}
	out, err := s.put(ctx, OpUpdate, e, s.codec.Policy().OptimisticUpdate)
	if err != nil {
		return zero, err
	}
	s.deps.Notify.Success(s.noun() + " updated successfully")
	return out, nil
}

// ToggleStatus flips the active flag of the entity with id.
func (s *Store[T]) ToggleStatus(ctx context.Context, id model.ID) (T, error) {
	var zero T
	cur, ok := s.Get(id)
	if !ok {
		return zero, s.missing(id)
	}
	next := s.codec.SetActive(cur, !cur.IsActive())
	out, err := s.put(ctx, OpToggle, next, true)
	if err != nil {
		return zero, err
	}
	s.deps.Notify.Success(fmt.Sprintf("%s status updated to %s", s.noun(), statusutil.Label(out.IsActive())))
	return out, nil
}

func (s *Store[T]) put(ctx context.Context, op Op, e T, optimistic bool) (T, error) {
	var zero T
	var prev *T
	if optimistic {
		if cur, ok := s.Get(e.Key()); ok {
			prev = &cur
		}
		s.replace(s.codec.Merge(e, nil))
	}
	resp, err := s.deps.Client.Do(ctx, s.updateRequest(e, op))
	if err != nil {
		verb := "update"
		if op == OpToggle {
			verb = "update status of"
		}
		return zero, s.fail(ctx, verb, err, prev)
	}
	out := s.confirm(e, resp)
	s.replace(out)
	return out, nil
}

func (s *Store[T]) updateRequest(e T, op Op) transport.Request {
	p := s.codec.Payload(e, op)
	req := transport.Request{Method: http.MethodPut, Path: itemPath(s.codec, e.Key()), Payload: p}
	if p.HasFile() && s.codec.Policy().OverrideMultipartUpdate {
		req.Method = http.MethodPost
		req.Payload = p.With(transport.MethodOverrideField, http.MethodPut)
	}
	return req
}

// Delete removes the entity only once the server has confirmed it.
func (s *Store[T]) Delete(ctx context.Context, id model.ID) error {
	if !id.Valid() {
		return s.missing(id)
	}
	_, err := s.deps.Client.Do(ctx, transport.Request{
		Method:      http.MethodDelete,
		Path:        itemPath(s.codec, id),
		DiscardBody: true,
	})
	if err != nil {
		return s.fail(ctx, "delete", err, nil)
	}
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, e := range s.items {
		if e.Key() != id {
			kept = append(kept, e)
		}
	}
	s.items = kept
	s.mu.Unlock()
	s.deps.Notify.Success(s.noun() + " deleted successfully")
	return nil
}

// confirm reconciles the submitted entity with the server's echo of it.
func (s *Store[T]) confirm(sent T, resp *transport.Response) T {
	rec, _ := DecodeOne(resp.Body, s.codec.Kind())
	out := s.codec.Merge(sent, rec)
	if !out.Key().Valid() && sent.Key().Valid() {
		return sent
	}
	return out
}

func (s *Store[T]) replace(e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Key() == e.Key() {
			s.items[i] = e
			return
		}
	}
}

func (s *Store[T]) upsert(e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Key() == e.Key() {
			s.items[i] = e
			return
		}
	}
	s.items = append(s.items, e)
}

// fail handles a failed mutation: expiry first, then the rollback of an
// optimistic write, then exactly one notification. prev is the entity as it
// was before the optimistic write, nil for pessimistic operations.
func (s *Store[T]) fail(ctx context.Context, verb string, err error, prev *T) error {
	if s.expired(err) {
		// Without a credential there is nothing to refetch from.
		if prev != nil {
			s.replace(*prev)
		}
		return err
	}
	s.log.WithError(err).WithField("op", verb).Warn("mutation failed")
	if prev != nil {
		if ferr := s.load(ctx); ferr != nil {
			s.log.WithError(ferr).Warn("rollback refetch failed")
			if s.expired(ferr) {
				s.replace(*prev)
				return err
			}
		}
	}
	s.deps.Notify.Error(failureText(verb, strings.ToLower(s.noun()), err))
	return err
}

func (s *Store[T]) missing(id model.ID) error {
	err := &NotFoundError{Kind: s.codec.Kind(), ID: id}
	s.deps.Notify.Error(err.Error())
	return err
}

// expired performs the expiry side effects when err is an AuthExpired
// outcome.
func (s *Store[T]) expired(err error) bool {
	if !transport.IsAuthExpired(err) {
		return false
	}
	if s.deps.Session != nil {
		if cerr := s.deps.Session.Clear(); cerr != nil {
			s.log.WithError(cerr).Error("clear session")
		}
	}
	s.deps.Notify.Error(MsgSessionExpired)
	if s.deps.RedirectDelay <= 0 {
		s.deps.Nav.ToLogin()
	} else {
		time.AfterFunc(s.deps.RedirectDelay, s.deps.Nav.ToLogin)
	}
	return true
}

func (s *Store[T]) noun() string {
	k := string(s.codec.Kind())
	return strings.ToUpper(k[:1]) + k[1:]
}

func failureText(verb, what string, err error) string {
	var rej *transport.ClientRejectedError
	if errors.As(err, &rej) && strings.TrimSpace(rej.Message) != "" {
		return rej.Message
	}
	if transport.IsCanceled(err) {
		return fmt.Sprintf("Failed to %s %s: canceled", verb, what)
	}
	switch transport.KindOf(err) {
	case transport.KindMalformedResponse:
		return fmt.Sprintf("Failed to %s %s: unexpected response from server", verb, what)
	case transport.KindServerFault:
		return fmt.Sprintf("Failed to %s %s: server error", verb, what)
	}
	return fmt.Sprintf("Failed to %s %s: %v", verb, what, err)
}
