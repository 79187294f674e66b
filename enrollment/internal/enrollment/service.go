package enrollment

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/tilinna/clock"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/apierr"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/cache"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/producer"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/response"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/auth"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/content"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/partner"
	"github.com/KB-iGOT/cb-external-enrollment-service/enrollment/internal/transform"
)

// Service answers every operation with an envelope. When the error is not
// nil it is an *apierr.Error and the envelope is the matching failure.
type Service interface {
	Enroll(ctx context.Context, body json.RawMessage, token string) (response.Envelope, error)
	ListByUser(ctx context.Context, token string) (response.Envelope, error)
	GetByUserAndCourse(ctx context.Context, courseID, token string) (response.Envelope, error)
	ProgressUpdate(ctx context.Context, payload json.RawMessage, partnerID string) (response.Envelope, error)
	FetchContent(ctx context.Context, contentID string) (response.Envelope, error)
}

type Config struct {
	// CacheTTL is the expiry, in seconds, of every entry the service caches.
	CacheTTL            uint
	ProgressUpdateTopic string
}

type Dependencies struct {
	Clock       clock.Clock
	Validator   auth.Validator
	Repository  Repository
	Contents    content.Fetcher
	Cache       cache.Cache
	Partners    partner.Client
	Transformer transform.Engine
	Producer    producer.Producer
}

type service struct {
	config Config
	Dependencies
	validate *validator.Validate
}

func NewService(config Config, deps Dependencies) Service {
	if deps.Cache == nil {
		deps.Cache = cache.Disabled()
	}

	return &service{
		config:       config,
		Dependencies: deps,
		validate:     validator.New(),
	}
}

func (s *service) now() time.Time {
	return s.Clock.Now().In(indiaZone)
}

func (s *service) Enroll(ctx context.Context, body json.RawMessage, token string) (response.Envelope, error) {
	userID, apiErr := s.resolveUser(ctx, token)
	if apiErr != nil {
		return s.fail(ctx, APICreate, apiErr)
	}

	req, err := ParseEnrollRequest(body)
	if err != nil || s.validate.Struct(req) != nil || isBlank(*req.CourseID) || isBlank(*req.PartnerID) {
		return s.fail(ctx, APICreate, apierr.BadRequest(MsgBothMandatory))
	}

	now := s.now()
	rec := Record{
		UserID:             userID,
		CourseID:           *req.CourseID,
		PartnerID:          *req.PartnerID,
		IssuedCertificates: []map[string]string{},
		EnrolledDate:       now,
		UpdatedOn:          now,
	}

	if err := s.Repository.Insert(ctx, rec); err != nil {
		return s.fail(ctx, APICreate, apierr.Internal(err))
	}

	slog.InfoContext(ctx, "enrollment: user enrolled", "user_id", userID, "course_id", rec.CourseID, "partner_id", rec.PartnerID)

	s.refreshCaches(ctx, userID, rec.CourseID)

	return response.New(ctx, APICreate, now).WithResult(rec), nil
}

func (s *service) ListByUser(ctx context.Context, token string) (response.Envelope, error) {
	userID, apiErr := s.resolveUser(ctx, token)
	if apiErr != nil {
		return s.fail(ctx, APIReadCourseList, apiErr)
	}

	key := listCacheKey(userID)
	if cached, ok := s.cached(ctx, key); ok {
		return response.New(ctx, APIReadCourseList, s.now()).WithResult(cached), nil
	}

	list, err := s.loadCourseList(ctx, userID)
	if err != nil {
		return s.fail(ctx, APIReadCourseList, apierr.Internal(err))
	}

	if len(list.Courses) == 0 {
		return response.New(ctx, APIReadCourseList, s.now()).WithMessage(MsgNotEnrolledAny), nil
	}

	s.store(ctx, key, list)

	return response.New(ctx, APIReadCourseList, s.now()).WithResult(list), nil
}

func (s *service) GetByUserAndCourse(ctx context.Context, courseID, token string) (response.Envelope, error) {
	userID, apiErr := s.resolveUser(ctx, token)
	if apiErr != nil {
		return s.fail(ctx, APIReadCourseID, apiErr)
	}

	if isBlank(courseID) {
		return s.fail(ctx, APIReadCourseID, apierr.BadRequest(MsgCourseIDMandatory))
	}

	key := courseCacheKey(userID, courseID)
	if cached, ok := s.cached(ctx, key); ok {
		return response.New(ctx, APIReadCourseID, s.now()).WithResult(cached), nil
	}

	recs, err := s.Repository.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return s.fail(ctx, APIReadCourseID, apierr.Internal(err))
	}

	if len(recs) == 0 {
		return response.New(ctx, APIReadCourseID, s.now()).WithMessage(MsgNotEnrolled), nil
	}

	rec := recs[0]
	if rec.UserID == "" || rec.CourseID == "" {
		return s.fail(ctx, APIReadCourseID, apierr.BadRequest(MsgCourseNotMatching))
	}

	s.store(ctx, key, rec)

	return response.New(ctx, APIReadCourseID, s.now()).WithResult(rec), nil
}

func (s *service) ProgressUpdate(ctx context.Context, payload json.RawMessage, partnerID string) (response.Envelope, error) {
	// Every progress failure is reported as internal, a missing partner included.
	if isBlank(partnerID) {
		return s.fail(ctx, APIProgressUpdate, apierr.Internal(errors.New(MsgPartnerMandatory)))
	}

	p, err := s.Partners.Read(ctx, partnerID)
	if err != nil {
		return s.fail(ctx, APIProgressUpdate, apierr.Internal(err))
	}

	if p.HasProgressTransform() {
		doc, err := transform.ApplyToObject(s.Transformer, payload, []json.RawMessage{p.TransformProgressJSON})
		if err != nil {
			return s.fail(ctx, APIProgressUpdate, apierr.Internal(err))
		}

		doc["partnerId"] = partnerID

		if err := s.Producer.Push(ctx, s.config.ProgressUpdateTopic, doc); err != nil {
			return s.fail(ctx, APIProgressUpdate, apierr.Internal(err))
		}
	} else {
		slog.InfoContext(ctx, "enrollment: partner has no progress transform, nothing published", "partner_id", partnerID)
	}

	return response.New(ctx, APIProgressUpdate, s.now()).
		WithResult(map[string]any{"response": MsgProgressUpdated}), nil
}

func (s *service) FetchContent(ctx context.Context, contentID string) (response.Envelope, error) {
	data, err := s.Contents.FetchByContentID(ctx, contentID)
	switch {
	case errors.Is(err, content.ErrContentIDMissing), errors.Is(err, content.ErrNoDataFound):
		return s.fail(ctx, APIContentRead, apierr.BadRequest(err.Error()))
	case err != nil:
		return s.fail(ctx, APIContentRead, apierr.Internal(err))
	}

	return response.New(ctx, APIContentRead, s.now()).WithResult(data), nil
}

func (s *service) resolveUser(ctx context.Context, token string) (string, *apierr.Error) {
	userID, err := s.Validator.UserID(ctx, token)
	if err != nil {
		slog.InfoContext(ctx, "enrollment: token rejected", "error", err)
		return "", apierr.Unauthorized(MsgUserIDDoesntExist)
	}

	userID = strings.TrimSpace(userID)
	if userID == "" || strings.EqualFold(userID, auth.Unauthorized) {
		return "", apierr.Unauthorized(MsgUserIDDoesntExist)
	}

	return userID, nil
}

// loadCourseList reads the user's enrollments and attaches the content of
// each course. A course without active content keeps a null content.
func (s *service) loadCourseList(ctx context.Context, userID string) (CourseList, error) {
	recs, err := s.Repository.FindByUser(ctx, userID)
	if err != nil {
		return CourseList{}, errors.Trace(err)
	}

	list := CourseList{Courses: make([]Course, 0, len(recs))}
	for _, rec := range recs {
		c := Course{Record: rec}

		data, err := s.Contents.FetchByContentID(ctx, rec.CourseID)
		switch {
		case errors.Is(err, content.ErrNoDataFound), errors.Is(err, content.ErrContentIDMissing):
			slog.WarnContext(ctx, "enrollment: no active content for enrolled course", "user_id", userID, "course_id", rec.CourseID)
		case err != nil:
			return CourseList{}, errors.Annotatef(err, "enriching course %s", rec.CourseID)
		default:
			if c.Content, err = content.ContentOf(data); err != nil {
				return CourseList{}, errors.Annotatef(err, "enriching course %s", rec.CourseID)
			}
		}

		list.Courses = append(list.Courses, c)
	}

	return list, nil
}

// refreshCaches rebuilds both entries an enroll makes stale. Failures only
// leave the cache behind the store.
func (s *service) refreshCaches(ctx context.Context, userID, courseID string) {
	recs, err := s.Repository.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		slog.WarnContext(ctx, "enrollment: refreshing course cache", "user_id", userID, "course_id", courseID, "error", errors.ErrorStack(err))
	} else if len(recs) > 0 && recs[0].UserID != "" && recs[0].CourseID != "" {
		s.store(ctx, courseCacheKey(userID, courseID), recs[0])
	}

	list, err := s.loadCourseList(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "enrollment: refreshing course list cache", "user_id", userID, "error", errors.ErrorStack(err))
		return
	}

	if len(list.Courses) > 0 {
		s.store(ctx, listCacheKey(userID), list)
	}
}

// cached returns the payload stored under key. Any cache failure is a miss.
func (s *service) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	var v json.RawMessage
	if err := cache.GetJSON(ctx, s.Cache, key, &v); err != nil {
		if !errors.Is(err, cache.ErrNoValueForKey) {
			slog.WarnContext(ctx, "enrollment: cache entry ignored", "key", key, "error", err)
		}

		return nil, false
	}

	return v, true
}

func (s *service) store(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, s.Cache, key, v, s.config.CacheTTL); err != nil {
		slog.WarnContext(ctx, "enrollment: cache write failed", "key", key, "error", err)
	}
}

func (s *service) fail(ctx context.Context, api string, apiErr *apierr.Error) (response.Envelope, error) {
	if apiErr.Kind == apierr.KindInternal {
		slog.ErrorContext(ctx, "enrollment: operation failed", "api", api, "error", errors.ErrorStack(apiErr.Cause))
	} else {
		slog.InfoContext(ctx, "enrollment: request rejected", "api", api, "kind", apiErr.Kind.String(), "message", apiErr.Message)
	}

	return response.Failure(ctx, api, s.now(), apiErr), apiErr
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
