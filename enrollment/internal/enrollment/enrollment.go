package enrollment

import (
	"encoding/json"
	"time"

	"github.com/juju/errors"
	"github.com/tidwall/gjson"
)

const (
	APICreate         = "api.cios.enrollment.create"
	APIReadCourseList = "api.cios.enrollment.read.courselist"
	APIReadCourseID   = "api.cios.enrollment.read.courseid"
	APIProgressUpdate = "api.cios.enrollment.progress.update"
	APIContentRead    = "api.cios.content.read"

	DefaultKeyspace = "sunbird_courses"
	DefaultTable    = "user_external_enrolments"
)

const (
	MsgUserIDDoesntExist = "User Id doesn't exist! Please supply a valid auth token"
	MsgBothMandatory     = "both partnerId and courseId mandatory"
	MsgCourseIDMandatory = "courseId is mandatory"
	MsgPartnerMandatory  = "partnerId is mandatory"
	MsgNotEnrolledAny    = "User is not enrolled into any courses"
	MsgNotEnrolled       = "User not enrolled into the course"
	MsgCourseNotMatching = "courseId is not matching"
	MsgProgressUpdated   = "Progress Updated Successfully"
)

// indiaZone is the fixed UTC+05:30 zone enrollment timestamps are written in.
var indiaZone = time.FixedZone("IST", 5*60*60+30*60)

// Record is a row of the external enrollments table. JSON names are the
// column names.
type Record struct {
	UserID               string              `json:"userid"`
	CourseID             string              `json:"courseid"`
	PartnerID            string              `json:"partnerid,omitempty"`
	Progress             int                 `json:"progress"`
	Status               int                 `json:"status"`
	CompletedOn          *time.Time          `json:"completedon"`
	CompletionPercentage int                 `json:"completionpercentage"`
	IssuedCertificates   []map[string]string `json:"issued_certificates"`
	EnrolledDate         time.Time           `json:"enrolled_date"`
	UpdatedOn            time.Time           `json:"updatedon"`
}

// Course is an enrollment as listed to its user, with the partner content
// attached. Content is null when the course has no active content.
type Course struct {
	Record
	Content json.RawMessage `json:"content"`
}

// CourseList is the result of ListByUser.
type CourseList struct {
	Courses []Course `json:"courses"`
}

type EnrollRequest struct {
	CourseID  *string `json:"courseId" validate:"required"`
	PartnerID *string `json:"partnerId" validate:"required"`
}

var ErrMalformedEnrollBody = errors.New("enroll body is not a JSON document")

// ParseEnrollRequest reads the ids out of an enroll body. Numbers and booleans
// are taken as their literal text, so {"courseId": 123} names course "123";
// null, objects and arrays leave the id unset.
func ParseEnrollRequest(body []byte) (EnrollRequest, error) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return EnrollRequest{}, errors.Trace(ErrMalformedEnrollBody)
	}

	doc := gjson.ParseBytes(body)
	return EnrollRequest{
		CourseID:  scalarText(doc.Get("courseId")),
		PartnerID: scalarText(doc.Get("partnerId")),
	}, nil
}

func scalarText(r gjson.Result) *string {
	var s string
	switch r.Type {
	case gjson.String:
		s = r.String()
	case gjson.Number, gjson.True, gjson.False:
		s = r.Raw
	default:
		return nil
	}

	return &s
}

func listCacheKey(userID string) string {
	return "enrollments:" + userID
}

func courseCacheKey(userID, courseID string) string {
	return "enrollment:" + userID + ":" + courseID
}
