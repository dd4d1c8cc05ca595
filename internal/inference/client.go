// Package inference talks to the external training server: image uploads,
// predictions and training runs.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/validation"
)

// Observer is told about every request sent to the training server.
type Observer func(op string, elapsed time.Duration, err error)

// Client implements Service over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	observe Observer
}

// NewClient creates a client for the server at baseURL. A zero timeout
// leaves the transport default in place.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetObserver registers o for subsequent requests.
func (c *Client) SetObserver(o Observer) {
	c.observe = o
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

type errorResponse struct {
	Error string `json:"error"`
}

// Upload sends a labelled image to /upload.
func (c *Client) Upload(ctx context.Context, image Image, label string) (*UploadResult, error) {
	body, contentType, err := multipartBody(image, map[string]string{"label": label})
	if err != nil {
		return nil, err
	}

	c.logger.Info("uploading image", zap.String("label", label), zap.String("url", c.baseURL+"/upload"))
	respBody, err := c.do(ctx, "upload", "/upload", contentType, body)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		// The upload response is informational only.
		c.logger.Warn("unreadable upload response", zap.Error(err))
	}
	c.logger.Debug("upload response", zap.ByteString("body", respBody))
	return &result, nil
}

// Predict sends an image to /predict.
func (c *Client) Predict(ctx context.Context, image Image) (*Prediction, error) {
	body, contentType, err := multipartBody(image, nil)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, "predict", "/predict", contentType, body)
	if err != nil {
		return nil, err
	}

	var pred Prediction
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, &TransportError{Op: "predict", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &pred, nil
}

// Train starts a training run. Missing or non-positive parameters fall back
// to DefaultLearningRate and DefaultEpochs.
func (c *Client) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	req = req.WithDefaults()
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid training parameters: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling train request: %w", err)
	}

	c.logger.Info("starting training",
		zap.Float64("learning_rate", req.LearningRate),
		zap.Int("epochs", req.Epochs),
	)
	respBody, err := c.do(ctx, "train", "/train", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var result TrainResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &TransportError{Op: "train", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &result, nil
}

// WithDefaults replaces unusable parameters with the defaults.
func (r TrainRequest) WithDefaults() TrainRequest {
	if r.LearningRate <= 0 || math.IsNaN(r.LearningRate) || math.IsInf(r.LearningRate, 0) {
		r.LearningRate = DefaultLearningRate
	}
	if r.Epochs <= 0 {
		r.Epochs = DefaultEpochs
	}
	return r
}

// do posts body and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader) (_ []byte, err error) {
	if c.observe != nil {
		start := time.Now()
		defer func() { c.observe(op, time.Since(start), err) }()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("training server unreachable", zap.String("op", op), zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		serr := &ServerError{Op: op, Status: httpResp.StatusCode, Message: serverMessage(httpResp.StatusCode, respBody)}
		c.logger.Warn("training server error", zap.String("op", op), zap.Int("status", serr.Status), zap.String("message", serr.Message))
		return nil, serr
	}
	return respBody, nil
}

func serverMessage(status int, body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unknown server error"
}

// multipartBody builds a form with the image under "image" plus any extra
// text fields.
func multipartBody(image Image, fields map[string]string) (io.Reader, string, error) {
	if image.Data == nil {
		return nil, "", fmt.Errorf("image data is required")
	}
	name := image.Name
	if name == "" {
		name = fmt.Sprintf("photo_%s.jpg", uuid.New().String())
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating image part: %w", err)
	}
	if _, err := io.Copy(part, image.Data); err != nil {
		return nil, "", fmt.Errorf("copying image: %w", err)
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var _ Service = (*Client)(nil)
