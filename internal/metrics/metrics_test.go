package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpload(t *testing.T) {
	successBefore := testutil.ToFloat64(UploadsTotal.WithLabelValues("direct", "success"))
	errorBefore := testutil.ToFloat64(UploadsTotal.WithLabelValues("presigned", "error"))
	bytesBefore := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("direct"))
	presignedBytesBefore := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("presigned"))

	ObserveUpload("direct", nil, 10)
	ObserveUpload("presigned", errors.New("status 500"), 150<<20)

	if got := testutil.ToFloat64(UploadsTotal.WithLabelValues("direct", "success")) - successBefore; got != 1 {
		t.Errorf("direct success delta = %v", got)
	}
	if got := testutil.ToFloat64(UploadsTotal.WithLabelValues("presigned", "error")) - errorBefore; got != 1 {
		t.Errorf("presigned error delta = %v", got)
	}
	if got := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("direct")) - bytesBefore; got != 10 {
		t.Errorf("direct bytes delta = %v", got)
	}
	if got := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("presigned")) - presignedBytesBefore; got != 0 {
		t.Errorf("failed upload counted %v bytes", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/v1/files/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/files/"+id, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests counted under pattern = %v, want 3", got)
	}
}
