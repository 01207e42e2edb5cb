// Package recognizer is the HTTP client for the face recognition service.
// The service is an opaque embedding provider: it maps an image to a
// fixed-length vector, or reports that no usable face was found.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	defaultBaseURL = "http://localhost:8001"
	defaultModel   = "facenet512"
)

// ErrNoFaceDetected is returned by strict-mode Represent when the recognizer
// could not find a usable face in the image.
var ErrNoFaceDetected = errors.New("no face detected")

// ErrUnavailable is returned when the recognizer service cannot be reached
// or fails internally. Callers on the attendance path degrade to a no-match
// result instead of propagating it to the user.
var ErrUnavailable = errors.New("recognizer unavailable")

// Client talks to the recognition service.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// New creates a recognizer client. Empty arguments fall back to defaults.
func New(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// representResponse is the recognizer's reply to a represent request.
type representResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// Face is a single detected face from an extract-faces request. Pixels is the
// raw crop as a flat float array in row-major order, Channels values per
// pixel. The value range and channel order are NOT guaranteed; run the crop
// through match.NormalizeFace before embedding it.
type Face struct {
	Index    int       `json:"face_index"`
	BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2]
	Score    float64   `json:"det_score"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Channels int       `json:"channels"`
	Pixels   []float32 `json:"pixels"`
}

// facesResponse is the recognizer's reply to an extract-faces request.
type facesResponse struct {
	FacesCount int    `json:"faces_count"`
	Faces      []Face `json:"faces"`
	Model      string `json:"model"`
}

// postMultipartImage posts the image as a multipart form to the given
// endpoint, with any extra string fields appended.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte, fields map[string]string) ([]byte, int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, 0, fmt.Errorf("failed to write image data: %w", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, 0, fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Represent computes the embedding for an image. In strict mode the
// recognizer must find a face, otherwise ErrNoFaceDetected is returned; in
// lenient mode it embeds best-effort and bad images still come back as
// errors the caller is expected to skip.
func (c *Client) Represent(ctx context.Context, imageData []byte, strict bool) ([]float32, error) {
	fields := map[string]string{
		"model":             c.model,
		"enforce_detection": "false",
	}
	if strict {
		fields["enforce_detection"] = "true"
	}

	body, status, err := c.postMultipartImage(ctx, "/represent", imageData, fields)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnprocessableEntity:
		return nil, ErrNoFaceDetected
	case status >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, string(body))
	case status != http.StatusOK:
		return nil, fmt.Errorf("recognizer error (status %d): %s", status, string(body))
	}

	var rep representResponse
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rep.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	return rep.Embedding, nil
}

// ExtractFaces detects all faces in an image and returns their raw crops.
// Detection is always lenient; an unusable image yields zero faces.
func (c *Client) ExtractFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	body, status, err := c.postMultipartImage(ctx, "/extract-faces", imageData, map[string]string{
		"model": c.model,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case status >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, string(body))
	case status != http.StatusOK:
		return nil, fmt.Errorf("recognizer error (status %d): %s", status, string(body))
	}

	var faces facesResponse
	if err := json.Unmarshal(body, &faces); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return faces.Faces, nil
}

// detectMIMEType detects the MIME type from image data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
