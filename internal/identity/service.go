// Package identity implements the employee operations exposed to chat:
// list, query, update and create against an identity provider.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Vovarama1992/wallee-bot/internal/cache"
	"github.com/Vovarama1992/wallee-bot/internal/protocol"
	"github.com/Vovarama1992/wallee-bot/internal/registry"
)

const ServiceName = "identity"

const (
	replyNoEmail          = "Sorry, did you give an email?"
	replyUnknownAttribute = "It looks like one of the query params isn't a part of the user"
	replyNoAssignments    = "Sorry, I didn't find any field=value pairs to apply."
	replyListFailed       = "Sorry, I couldn't fetch the employee list right now."
)

type Service struct {
	backend Backend
	users   *cache.Region[User]
	log     logrus.FieldLogger
}

func NewService(backend Backend, store *cache.Store, log logrus.FieldLogger) *Service {
	return &Service{
		backend: backend,
		users:   cache.NewRegion(store, ServiceName, UserKey),
		log:     log.WithField("service", ServiceName),
	}
}

// UserKey is the cache key of a user: the lower-cased profile email.
func UserKey(u User) string {
	return strings.ToLower(u.Profile.Email)
}

// Handlers is the verb table this service registers.
func (s *Service) Handlers() registry.Handlers {
	return registry.Handlers{
		"list":   s.List,
		"query":  s.Query,
		"update": s.Update,
		"create": s.Create,
	}
}

func (s *Service) List(ctx context.Context, _ []string) string {
	users, err := s.refresh(ctx)
	if err != nil {
		return replyListFailed
	}

	lines := make([]string, 0, len(users))
	for _, u := range users {
		fullName := u.Profile.FirstName + ", " + u.Profile.LastName
		lines = append(lines, fullName+" - "+u.Profile.Email)
	}

	return "Employees:\n" + strings.Join(lines, "\n")
}

// Query reads attributes from the cached snapshot.
func (s *Service) Query(ctx context.Context, params []string) string {
	email, ok := emailParam(params)
	if !ok {
		return replyNoEmail
	}

	user, found := s.users.Get(strings.ToLower(email))
	if !found {
		if _, err := s.refresh(ctx); err != nil {
			return replyListFailed
		}
		user, found = s.users.Get(strings.ToLower(email))
	}
	if !found {
		return noUser(email)
	}

	lines := []string{"Email: " + email}
	for _, attr := range params[1:] {
		v, err := user.Profile.Get(attr)
		if err != nil {
			s.log.WithError(err).WithField("email", email).Warn("query for unknown attribute")
			return replyUnknownAttribute
		}
		lines = append(lines, displayName(attr)+": "+v)
	}

	return strings.Join(lines, "\n")
}

func (s *Service) Update(ctx context.Context, params []string) string {
	email, ok := emailParam(params)
	if !ok {
		return replyNoEmail
	}

	assignments := protocol.ExtractAssignments(params[1:])
	if assignments.Len() == 0 {
		return replyNoAssignments
	}
	echo := assignmentLines(assignments)

	user, found, err := s.freshUser(ctx, email)
	if err != nil {
		return outcome("Update", false, echo)
	}
	if !found {
		return noUser(email)
	}

	for _, f := range assignments.Fields() {
		v, _ := assignments.Get(f)
		if err := user.Profile.Set(f, v); err != nil {
			s.log.WithError(err).WithField("email", email).Warn("update of unknown attribute")
			return replyUnknownAttribute
		}
	}

	_, resp, err := s.backend.UpdateUser(ctx, user.ID, user)
	ok = s.checked("update user", resp, err) == nil

	return outcome("Update", ok, echo)
}

func (s *Service) Create(ctx context.Context, params []string) string {
	email, ok := emailParam(params)
	if !ok {
		return replyNoEmail
	}

	assignments := protocol.ExtractAssignments(params[1:])

	fields := assignments.Fields()
	values := assignments.Map()
	if _, exists := values["email"]; !exists {
		fields = append(fields, "email")
	}
	values["email"] = email

	var profile Profile
	echo := make([]string, 0, len(fields))
	for _, f := range fields {
		if err := profile.Set(f, values[f]); err != nil {
			s.log.WithError(err).WithField("email", email).Warn("create with unknown attribute")
			return replyUnknownAttribute
		}
		echo = append(echo, displayName(f)+": "+values[f])
	}
	profile.Login = email

	_, resp, err := s.backend.CreateUser(ctx, CreateUserRequest{Profile: profile})
	ok = s.checked("create user", resp, err) == nil

	return outcome("Creation", ok, echo)
}

func (s *Service) refresh(ctx context.Context) ([]User, error) {
	users, resp, err := s.backend.ListUsers(ctx)
	if err := s.checked("list users", resp, err); err != nil {
		return nil, err
	}

	s.users.Refresh(users)
	s.log.WithField("users", len(users)).Debug("user cache refreshed")
	return users, nil
}

// freshUser resolves email to a user safe to write back: a cache hit is
// re-fetched by id, a miss triggers a full refresh. A user the backend no
// longer knows reads as not found on both paths. The returned profile never
// shares state with the cache snapshot.
func (s *Service) freshUser(ctx context.Context, email string) (User, bool, error) {
	key := strings.ToLower(email)

	if cached, ok := s.users.Get(key); ok {
		u, resp, err := s.backend.GetUser(ctx, cached.ID)
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			s.log.WithField("email", email).Info("cached user is gone upstream")
			return User{}, false, nil
		}
		if err := s.checked("get user", resp, err); err != nil {
			return User{}, false, err
		}
		if u == nil {
			return User{}, false, nil
		}
		fresh := *u
		fresh.Profile = u.Profile.clone()
		return fresh, true, nil
	}

	if _, err := s.refresh(ctx); err != nil {
		return User{}, false, err
	}
	u, ok := s.users.Get(key)
	if !ok {
		return User{}, false, nil
	}
	u.Profile = u.Profile.clone()
	return u, true, nil
}

// checked folds a backend call's error and status into one error, logging
// the diagnostic detail.
func (s *Service) checked(call string, resp *Response, err error) error {
	if err == nil && resp.OK() {
		return nil
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	fault := fmt.Errorf("%w: %s: status %d", ErrBackend, call, status)
	if err != nil {
		fault = fmt.Errorf("%w: %s: status %d: %v", ErrBackend, call, status, err)
	}

	s.log.WithFields(logrus.Fields{
		"call":   call,
		"status": status,
	}).WithError(err).Error("identity backend call failed")

	return fault
}

func emailParam(params []string) (string, bool) {
	if len(params) == 0 {
		return "", false
	}
	return protocol.ExtractEmail(params[0])
}

func noUser(email string) string {
	return fmt.Sprintf("Sorry, no user found with the email %s.", email)
}

func outcome(action string, ok bool, lines []string) string {
	result := "Failure"
	if ok {
		result = "Success"
	}
	return fmt.Sprintf("[%s: %s]\n", action, result) + strings.Join(lines, "\n")
}

func assignmentLines(a protocol.Assignments) []string {
	lines := make([]string, 0, a.Len())
	a.Each(func(field, value string) {
		lines = append(lines, displayName(field)+": "+value)
	})
	return lines
}

// displayName upper-cases the first letter of a field name.
// cases.Caser is stateful, so one is made per call.
func displayName(field string) string {
	return cases.Title(language.Und, cases.NoLower).String(field)
}
