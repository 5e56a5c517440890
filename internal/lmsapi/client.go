package lmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lms-client/internal/domain"
	"github.com/go-resty/resty/v2"
)

// Client talks to the LMS API. It is stateless: the bearer token is passed
// per call so one client can serve whichever viewer is signed in.
type Client struct {
	rc *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.rc.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// apiError extracts the server's message field when present, falling back
// to the HTTP status.
func apiError(resp *resty.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		return fmt.Errorf("%s", body.Message)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode())
}

// EnrolledCourses lists the courses the viewer is enrolled in. A 404 here
// is a hard error: without the course set nothing else can be fetched.
func (c *Client) EnrolledCourses(ctx context.Context, token string) ([]domain.Course, error) {
	return c.listCourses(ctx, token, "/api/Courses/enrolled")
}

// TaughtCourses lists the courses the viewer teaches.
func (c *Client) TaughtCourses(ctx context.Context, token string) ([]domain.Course, error) {
	return c.listCourses(ctx, token, "/api/Courses/instructor")
}

// AvailableCourses lists courses open for enrollment, including ones the
// viewer already joined; callers subtract the enrolled set.
func (c *Client) AvailableCourses(ctx context.Context, token string) ([]domain.Course, error) {
	return c.listCourses(ctx, token, "/api/Courses/available")
}

func (c *Client) listCourses(ctx context.Context, token, path string) ([]domain.Course, error) {
	resp, err := c.request(ctx, token).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch courses: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch courses: %w", apiError(resp))
	}
	courses, _ := decodeList[domain.Course](resp.Body())
	return courses, nil
}

// Enroll joins the viewer to a course and returns the server's confirmation
// message when it sends one.
func (c *Client) Enroll(ctx context.Context, token, courseID string) (string, error) {
	resp, err := c.request(ctx, token).Post("/api/Courses/" + courseID + "/enroll")
	if err != nil {
		return "", fmt.Errorf("enroll: %w", err)
	}
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(resp.Body(), &body)
	if !resp.IsSuccess() {
		return "", fmt.Errorf("enroll: %w", apiError(resp))
	}
	return body.Message, nil
}

// AssessmentsByCourse lists a course's assessments. 404 means the course
// simply has none yet.
func (c *Client) AssessmentsByCourse(ctx context.Context, token, courseID string) ([]domain.Assessment, error) {
	resp, err := c.request(ctx, token).Get("/api/Assessments/course/" + courseID)
	if err != nil {
		return nil, fmt.Errorf("fetch assessments: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch assessments: %w", apiError(resp))
	}
	assessments, _ := decodeList[domain.Assessment](resp.Body())
	return assessments, nil
}

// ResultsByAssessment lists every submission for an assessment. 404 means
// no submissions yet. The server already restricts rows to what the viewer
// may see per its own rules; students additionally filter client-side.
func (c *Client) ResultsByAssessment(ctx context.Context, token, assessmentID string) ([]domain.Result, error) {
	resp, err := c.request(ctx, token).Get("/api/Results/assessment/" + assessmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch results: %w", apiError(resp))
	}
	results, _ := decodeList[domain.Result](resp.Body())
	return results, nil
}

// ResultByID fetches a single submission. 404 maps to domain.ErrNotFound so
// callers can soft-skip stale hint IDs.
func (c *Client) ResultByID(ctx context.Context, token, resultID string) (domain.Result, error) {
	resp, err := c.request(ctx, token).Get("/api/Results/" + resultID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch result %s: %w", resultID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.Result{}, domain.ErrNotFound
	}
	if !resp.IsSuccess() {
		return domain.Result{}, fmt.Errorf("fetch result %s: %w", resultID, apiError(resp))
	}
	var result domain.Result
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return domain.Result{}, fmt.Errorf("decode result %s: %w", resultID, err)
	}
	return result, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  domain.Viewer `json:"user"`
}

// Login exchanges credentials for a bearer token and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.Viewer, error) {
	return c.authenticate(ctx, "/api/Auth/login", credentials{Email: email, Password: password})
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, name, email, password string, role domain.Role) (string, domain.Viewer, error) {
	return c.authenticate(ctx, "/api/Auth/register", registration{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(role),
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (string, domain.Viewer, error) {
	resp, err := c.rc.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return "", domain.Viewer{}, fmt.Errorf("authenticate: %w", err)
	}
	if !resp.IsSuccess() {
		return "", domain.Viewer{}, fmt.Errorf("authenticate: %w", apiError(resp))
	}
	var auth authResponse
	if err := json.Unmarshal(resp.Body(), &auth); err != nil {
		return "", domain.Viewer{}, fmt.Errorf("decode auth response: %w", err)
	}
	if auth.Token == "" {
		return "", domain.Viewer{}, fmt.Errorf("authenticate: server sent no token")
	}
	auth.User.Role = domain.ParseRole(string(auth.User.Role))
	return auth.Token, auth.User, nil
}
