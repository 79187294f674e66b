package enrollment

import (
	"context"
	"time"

	"github.com/juju/errors"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/cassandra"
)

const (
	colUserID               = "userid"
	colCourseID             = "courseid"
	colPartnerID            = "partnerid"
	colProgress             = "progress"
	colStatus               = "status"
	colCompletedOn          = "completedon"
	colCompletionPercentage = "completionpercentage"
	colIssuedCertificates   = "issued_certificates"
	colEnrolledDate         = "enrolled_date"
	colUpdatedOn            = "updatedon"
)

// readColumns is the projection used by every read. partnerid is written on
// enroll but never read back.
var readColumns = []string{
	colUserID,
	colCourseID,
	colCompletedOn,
	colUpdatedOn,
	colCompletionPercentage,
	colEnrolledDate,
	colIssuedCertificates,
	colProgress,
	colStatus,
}

type Repository interface {
	// Insert writes rec, replacing any row with the same (userid, courseid).
	Insert(ctx context.Context, rec Record) error
	FindByUser(ctx context.Context, userID string) ([]Record, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID string) ([]Record, error)
}

type cassandraRepository struct {
	op       cassandra.Operation
	keyspace string
	table    string
}

func NewRepository(op cassandra.Operation, keyspace, table string) Repository {
	return &cassandraRepository{op: op, keyspace: keyspace, table: table}
}

func (r *cassandraRepository) Insert(ctx context.Context, rec Record) error {
	return errors.Trace(r.op.InsertRecord(ctx, r.keyspace, r.table, toRow(rec)))
}

func (r *cassandraRepository) FindByUser(ctx context.Context, userID string) ([]Record, error) {
	return r.find(ctx, map[string]any{colUserID: userID})
}

func (r *cassandraRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) ([]Record, error) {
	return r.find(ctx, map[string]any{colUserID: userID, colCourseID: courseID})
}

func (r *cassandraRepository) find(ctx context.Context, properties map[string]any) ([]Record, error) {
	rows, err := r.op.GetRecordsByProperties(ctx, r.keyspace, r.table, properties, readColumns)
	if err != nil {
		return nil, errors.Trace(err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}

	return out, nil
}

func toRow(rec Record) map[string]any {
	var completedOn any
	if rec.CompletedOn != nil {
		completedOn = *rec.CompletedOn
	}

	certificates := rec.IssuedCertificates
	if certificates == nil {
		certificates = []map[string]string{}
	}

	return map[string]any{
		colUserID:               rec.UserID,
		colCourseID:             rec.CourseID,
		colPartnerID:            rec.PartnerID,
		colProgress:             rec.Progress,
		colStatus:               rec.Status,
		colCompletedOn:          completedOn,
		colCompletionPercentage: rec.CompletionPercentage,
		colIssuedCertificates:   certificates,
		colEnrolledDate:         rec.EnrolledDate,
		colUpdatedOn:            rec.UpdatedOn,
	}
}

// fromRow is lenient: columns that are absent, null or of an unexpected type
// are left at their zero value.
func fromRow(row map[string]any) Record {
	rec := Record{
		UserID:               asString(row[colUserID]),
		CourseID:             asString(row[colCourseID]),
		PartnerID:            asString(row[colPartnerID]),
		Progress:             asInt(row[colProgress]),
		Status:               asInt(row[colStatus]),
		CompletionPercentage: asInt(row[colCompletionPercentage]),
		IssuedCertificates:   asCertificates(row[colIssuedCertificates]),
	}

	if t, ok := asTime(row[colCompletedOn]); ok {
		rec.CompletedOn = &t
	}
	rec.EnrolledDate, _ = asTime(row[colEnrolledDate])
	rec.UpdatedOn, _ = asTime(row[colUpdatedOn])

	return rec
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}

	return 0
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t != nil {
			return *t, !t.IsZero()
		}
	}

	return time.Time{}, false
}

func asCertificates(v any) []map[string]string {
	out := []map[string]string{}

	switch list := v.(type) {
	case []map[string]string:
		out = append(out, list...)
	case []any:
		for _, item := range list {
			if m, ok := item.(map[string]string); ok {
				out = append(out, m)
			}
		}
	}

	return out
}
