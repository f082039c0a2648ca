// Package memory is a process-lifetime implementation of repository.Store.
// All state sits behind one RWMutex, which also makes uniqueness checks and
// counter increments atomic.
package memory

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	users          []*model.User
	categories     []*model.ForumCategory
	posts          []*model.ForumPost
	comments       []*model.ForumComment
	secondOpinions []*model.SecondOpinionRequest
	messages       []*model.Message
	pharmacies     []*model.Pharmacy
	testimonials   []*model.Testimonial
	records        []*model.MedicalRecord
	contracts      []*model.SosContract
	auditEvents    []*model.AuditEvent

	seq map[string]int64
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		seq: make(map[string]int64),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

// nextID must be called with the write lock held.
func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func find[T any](items []*T, match func(*T) bool) *T {
	for _, it := range items {
		if match(it) {
			return it
		}
	}
	return nil
}

func filter[T any](items []*T, match func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, it := range items {
		if match(it) {
			out = append(out, clone(it))
		}
	}
	return out
}

func clone[T any](v *T) *T {
	cp := *v
	detach(reflect.ValueOf(&cp).Elem())
	return &cp
}

// detach gives a copied row its own pointer targets and slice backing
// arrays, so writes through a returned value never reach the stored row.
func detach(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() || f.IsZero() {
			continue
		}
		switch f.Kind() {
		case reflect.Ptr:
			p := reflect.New(f.Type().Elem())
			p.Elem().Set(f.Elem())
			f.Set(p)
		case reflect.Slice:
			s := reflect.MakeSlice(f.Type(), f.Len(), f.Len())
			reflect.Copy(s, f)
			f.Set(s)
		}
	}
}

func all[T any](*T) bool { return true }
