package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 0, nil)
}

func jpeg(data string) Image {
	return Image{Name: "test.jpg", Data: strings.NewReader(data)}
}

func TestUploadSendsMultipart(t *testing.T) {
	var gotLabel, gotImage, gotFilename, gotType string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		gotLabel = r.FormValue("label")
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotImage = string(b)
		gotFilename = hdr.Filename
		gotType = hdr.Header.Get("Content-Type")
		w.Write([]byte(`{"status":"imagen recibida","path":"dataset/Cat A/x.jpg"}`))
	})

	res, err := c.Upload(context.Background(), jpeg("jpegbytes"), "Cat A")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotLabel != "Cat A" || gotImage != "jpegbytes" || gotFilename != "test.jpg" {
		t.Errorf("server saw label=%q image=%q filename=%q", gotLabel, gotImage, gotFilename)
	}
	if gotType != "image/jpeg" {
		t.Errorf("image content type = %q, want image/jpeg", gotType)
	}
	if res.Path != "dataset/Cat A/x.jpg" {
		t.Errorf("path = %q", res.Path)
	}
}

func TestUploadGeneratesFilename(t *testing.T) {
	var filename string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, hdr, _ := r.FormFile("image")
		filename = hdr.Filename
		w.Write([]byte(`{}`))
	})
	if _, err := c.Upload(context.Background(), Image{Data: strings.NewReader("x")}, "a"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(filename, "photo_") || !strings.HasSuffix(filename, ".jpg") {
		t.Errorf("generated filename = %q", filename)
	}
}

func TestUploadRequiresData(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 0, nil)
	if _, err := c.Upload(context.Background(), Image{}, "a"); err == nil {
		t.Fatal("expected error for missing image data")
	}
}

func TestPredict(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"probabilities_map":     map[string]float64{"Cat A": 0.9, "Cat B": 0.1},
			"predicted_class_label": "Cat A",
		})
	})
	pred, err := c.Predict(context.Background(), jpeg("x"))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred.PredictedLabel != "Cat A" || pred.Probabilities["Cat B"] != 0.1 {
		t.Errorf("prediction = %+v", pred)
	}
}

func TestPredictServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Modelo no entrenado. Sube imágenes primero."}`))
	})
	_, err := c.Predict(context.Background(), jpeg("x"))
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *ServerError, got %T: %v", err, err)
	}
	if serr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", serr.Status)
	}
	if serr.Message != "Modelo no entrenado. Sube imágenes primero." {
		t.Errorf("message = %q, want verbatim server error", serr.Message)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, 0, nil)
	_, err := c.Predict(context.Background(), jpeg("x"))
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if terr.Op != "predict" {
		t.Errorf("op = %q", terr.Op)
	}
}

func TestTrain(t *testing.T) {
	var got TrainRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"status":"¡Modelo entrenado!","classes":["Cat A","Cat B"]}`))
	})

	res, err := c.Train(context.Background(), TrainRequest{LearningRate: 0.01, Epochs: 5})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got.LearningRate != 0.01 || got.Epochs != 5 {
		t.Errorf("server saw %+v", got)
	}
	if len(res.Classes) != 2 || res.Classes[0] != "Cat A" {
		t.Errorf("classes = %v", res.Classes)
	}
}

func TestTrainDefaults(t *testing.T) {
	var got TrainRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"classes":[]}`))
	})
	if _, err := c.Train(context.Background(), TrainRequest{}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got.LearningRate != DefaultLearningRate || got.Epochs != DefaultEpochs {
		t.Errorf("server saw %+v, want defaults", got)
	}
}

func TestTrainSendsValuesUnbounded(t *testing.T) {
	var got TrainRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"classes":[]}`))
	})
	if _, err := c.Train(context.Background(), TrainRequest{LearningRate: 5, Epochs: 5000}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got.LearningRate != 5 || got.Epochs != 5000 {
		t.Errorf("server saw %+v, want values passed through", got)
	}
}

func TestTrainServerErrorWithoutBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Train(context.Background(), TrainRequest{LearningRate: 0.1, Epochs: 1})
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *ServerError, got %v", err)
	}
	if serr.Message != "Internal Server Error" {
		t.Errorf("message = %q", serr.Message)
	}
}

func TestObserver(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/predict" {
			http.Error(w, `{"error":"model not trained"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"status":"ok","classes":["a"]}`))
	})

	type call struct {
		op  string
		err error
	}
	var calls []call
	c.SetObserver(func(op string, elapsed time.Duration, err error) {
		if elapsed < 0 {
			t.Errorf("negative elapsed for %s", op)
		}
		calls = append(calls, call{op, err})
	})

	c.Train(context.Background(), TrainRequest{})
	c.Predict(context.Background(), jpeg("x"))

	if len(calls) != 2 {
		t.Fatalf("got %d observed calls, want 2", len(calls))
	}
	if calls[0].op != "train" || calls[0].err != nil {
		t.Errorf("first call = %+v", calls[0])
	}
	var serr *ServerError
	if calls[1].op != "predict" || !errors.As(calls[1].err, &serr) {
		t.Errorf("second call = %+v", calls[1])
	}
}
