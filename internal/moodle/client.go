package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"
)

const coursesFunction = "core_course_get_courses"

// Course is one row of the Moodle course catalogue.
type Course struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullname"`
	ShortName string `json:"shortname"`
}

// Client talks to the Moodle webservice REST endpoint with a service token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchCourses returns the full course catalogue. Moodle reports its own
// errors as a JSON object instead of an array; that payload decodes to
// nothing here and callers treat the empty result as "course not found".
func (c *Client) FetchCourses(ctx context.Context) ([]Course, error) {
	params := url.Values{}
	params.Set("wstoken", c.token)
	params.Set("wsfunction", coursesFunction)
	params.Set("moodlewsrestformat", "json")

	endpoint := fmt.Sprintf("%s/webservice/rest/server.php?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build moodle request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moodle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moodle returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read moodle response: %w", err)
	}

	var courses []Course
	if err := json.Unmarshal(body, &courses); err != nil {
		logger.Debug.Printf("Moodle returned non-array payload: %s", string(body))
		return nil, nil
	}

	return courses, nil
}
