package httpbinding

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wot-td/wot-go/pkg/metrics"
	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/service"
	"github.com/wot-td/wot-go/pkg/tdjson"
	"github.com/wot-td/wot-go/pkg/transport"
)

func addForm(t *testing.T, forms *model.FormList, href string, ops ...model.OperationType) {
	t.Helper()
	f := &model.Form{Href: &model.URI{Value: href}}
	for _, op := range ops {
		require.NoError(t, f.AddOp(op))
	}
	require.NoError(t, forms.Add(f))
}

func testThing(t *testing.T) *model.Thing {
	t.Helper()
	thing := &model.Thing{}
	require.NoError(t, thing.SecurityDefinitions.Add(&model.SecurityDefinition{
		Key:    "nosec_sc",
		Scheme: &model.SecurityScheme{Details: model.NoSecurity{}},
	}))
	require.NoError(t, thing.Titles.Add(&model.MultiLang{Value: "Lamp"}))

	status := &model.PropertyAffordance{Key: "status", Schema: &model.DataSchema{Payload: model.StringSchema{}, ReadOnly: true}}
	addForm(t, &status.Forms, "/properties/status", model.OpReadProperty, model.OpObserveProperty)
	require.NoError(t, thing.Properties.Add(status))

	brightness := &model.PropertyAffordance{Key: "brightness", Schema: &model.DataSchema{
		Payload: &model.IntegerSchema{Minimum: ptr[int64](0), Maximum: ptr[int64](100)},
	}}
	addForm(t, &brightness.Forms, "/properties/brightness", model.OpReadProperty, model.OpWriteProperty)
	require.NoError(t, thing.Properties.Add(brightness))

	toggle := &model.ActionAffordance{Key: "toggle"}
	addForm(t, &toggle.Forms, "/actions/toggle", model.OpInvokeAction)
	require.NoError(t, thing.Actions.Add(toggle))

	overheat := &model.EventAffordance{Key: "overheat"}
	addForm(t, &overheat.Forms, "/events/overheat", model.OpSubscribeEvent)
	require.NoError(t, thing.Events.Add(overheat))
	return thing
}

func ptr[T any](v T) *T { return &v }

func newTestServer(t *testing.T) (*Server, *service.Host) {
	t.Helper()
	host := service.NewHost(testThing(t))
	require.NoError(t, host.SetProperty("status", "off"))
	require.NoError(t, host.SetProperty("brightness", 40))
	host.HandleAction("toggle", func(ctx context.Context, _ any) (any, error) {
		v, _ := host.ReadProperty(ctx, "status")
		next := "on"
		if v == "on" {
			next = "off"
		}
		return next, host.SetProperty("status", next)
	})

	config := DefaultConfig()
	config.Metrics = metrics.New()
	return NewServer(host, config), host
}

func do(t *testing.T, s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func fullDocument(t *testing.T, host *service.Host) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, host.WriteDescription(&sb, nil))
	return sb.String()
}

func TestWellKnownFull(t *testing.T) {
	s, host := newTestServer(t)
	doc := fullDocument(t, host)

	rec := do(t, s, http.MethodGet, WellKnownPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MediaTypeTD, rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, doc, rec.Body.String())
	assert.True(t, json.Valid(rec.Body.Bytes()))

	_, etag, err := host.DescriptionInfo()
	require.NoError(t, err)
	assert.Equal(t, ETagHeader(etag), rec.Header().Get("ETag"))
}

func TestWellKnownStreamsBody(t *testing.T) {
	rec := httptest.NewRecorder()
	sentBeforeLastForm := -1
	thing := testThing(t)
	last := thing.FindEvent("overheat").Forms.FindNth(0)
	require.NoError(t, last.Extensions.Add(&model.Extension{
		Name: "x-progress",
		Renderer: model.ExtensionFunc(func(io.Writer, string, any) {
			sentBeforeLastForm = rec.Body.Len()
		}),
	}))
	host := service.NewHost(thing)
	s := NewServer(host, DefaultConfig())

	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, WellKnownPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc := fullDocument(t, host)
	assert.Equal(t, doc, rec.Body.String())
	assert.Equal(t, strconv.Itoa(len(doc)), rec.Header().Get("Content-Length"))
	assert.Greater(t, sentBeforeLastForm, 0, "body must reach the client while rendering")
	assert.Less(t, sentBeforeLastForm, len(doc))
}

func TestWellKnownHead(t *testing.T) {
	s, host := newTestServer(t)
	size := len(fullDocument(t, host))

	rec := do(t, s, http.MethodHead, WellKnownPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, strconv.Itoa(size), rec.Header().Get("Content-Length"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.Zero(t, rec.Body.Len())

	rec = do(t, s, http.MethodHead, WellKnownPath, "", "Range", "bytes=0-9")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Zero(t, rec.Body.Len())
}

func TestWellKnownRanges(t *testing.T) {
	s, host := newTestServer(t)
	doc := fullDocument(t, host)
	size := len(doc)

	tests := []struct {
		name         string
		rangeHeader  string
		wantBody     string
		contentRange string
	}{
		{"prefix", "bytes=0-9", doc[:10], fmt.Sprintf("bytes 0-9/%d", size)},
		{"middle", "bytes=20-49", doc[20:50], fmt.Sprintf("bytes 20-49/%d", size)},
		{"open", "bytes=100-", doc[100:], fmt.Sprintf("bytes 100-%d/%d", size-1, size)},
		{"suffix", "bytes=-15", doc[size-15:], fmt.Sprintf("bytes %d-%d/%d", size-15, size-1, size)},
		{"clamped", fmt.Sprintf("bytes=%d-%d", size-5, size+100), doc[size-5:], fmt.Sprintf("bytes %d-%d/%d", size-5, size-1, size)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, WellKnownPath, "", "Range", tt.rangeHeader)
			require.Equal(t, http.StatusPartialContent, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.contentRange, rec.Header().Get("Content-Range"))
		})
	}
}

func TestWellKnownStitchedRanges(t *testing.T) {
	s, host := newTestServer(t)
	doc := fullDocument(t, host)

	var sb strings.Builder
	etag := ""
	for off := 0; off < len(doc); off += 64 {
		rec := do(t, s, http.MethodGet, WellKnownPath, "", "Range", fmt.Sprintf("bytes=%d-%d", off, off+63))
		require.Equal(t, http.StatusPartialContent, rec.Code)
		if etag == "" {
			etag = rec.Header().Get("ETag")
		}
		assert.Equal(t, etag, rec.Header().Get("ETag"))
		sb.WriteString(rec.Body.String())
	}
	assert.Equal(t, doc, sb.String())
}

func TestWellKnownConditional(t *testing.T) {
	s, host := newTestServer(t)
	doc := fullDocument(t, host)
	_, raw, err := host.DescriptionInfo()
	require.NoError(t, err)
	etag := ETagHeader(raw)

	rec := do(t, s, http.MethodGet, WellKnownPath, "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = do(t, s, http.MethodGet, WellKnownPath, "", "If-Match", `"0000000000000000"`)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	// A stale If-Range falls back to the whole document.
	rec = do(t, s, http.MethodGet, WellKnownPath, "", "Range", "bytes=0-9", "If-Range", `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, doc, rec.Body.String())

	rec = do(t, s, http.MethodGet, WellKnownPath, "", "Range", "bytes=0-9", "If-Range", etag)
	assert.Equal(t, http.StatusPartialContent, rec.Code)

	require.NoError(t, host.Update(func(thing *model.Thing) error {
		return thing.Descriptions.Add(&model.MultiLang{Value: "changed"})
	}))
	rec = do(t, s, http.MethodGet, WellKnownPath, "", "Range", "bytes=10-19", "If-Match", etag)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestWellKnownUnsatisfiable(t *testing.T) {
	s, host := newTestServer(t)
	size := len(fullDocument(t, host))

	rec := do(t, s, http.MethodGet, WellKnownPath, "", "Range", fmt.Sprintf("bytes=%d-", size))
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, fmt.Sprintf("bytes */%d", size), rec.Header().Get("Content-Range"))
}

func TestWellKnownInvalidDocument(t *testing.T) {
	s := NewServer(service.NewHost(&model.Thing{}), DefaultConfig())

	rec := do(t, s, http.MethodGet, WellKnownPath, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "@context")
}

func TestPropertyRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/properties/brightness", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `40`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/properties/brightness", `75`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/properties/brightness", "")
	assert.JSONEq(t, `75`, rec.Body.String())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown", http.MethodGet, "/properties/color", "", http.StatusNotFound},
		{"read-only", http.MethodPut, "/properties/status", `"on"`, http.StatusMethodNotAllowed},
		{"out of range", http.MethodPut, "/properties/brightness", `300`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/properties/brightness", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestActionRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/actions/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `"on"`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/properties/status", "")
	assert.JSONEq(t, `"on"`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/actions/explode", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, WellKnownPath, "")

	rec := do(t, s, http.MethodGet, MetricsPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wot_td_blocks_served_total{binding="http"} 1`)
}

func TestServerStartStop(t *testing.T) {
	host := service.NewHost(testThing(t))
	config := DefaultConfig()
	config.Address = "127.0.0.1:0"
	s := NewServer(host, config)
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr().String() + WellKnownPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))

	_, err = tdjson.Size(testThing(t))
	assert.NoError(t, err)
}

func TestServerTLS(t *testing.T) {
	cert, err := transport.SelfSignedCertificate("localhost")
	require.NoError(t, err)

	config := DefaultConfig()
	config.Address = "127.0.0.1:0"
	config.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{cert}}
	s := NewServer(service.NewHost(testThing(t)), config)
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}}
	resp, err := client.Get("https://" + s.Addr().String() + WellKnownPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, resp.TLS)
}

func TestACMEConfig(t *testing.T) {
	config := DefaultConfig()
	config.ACMEHosts = []string{"lamp.example.com"}
	config.ACMECacheDir = t.TempDir()
	s := NewServer(service.NewHost(testThing(t)), config)

	tc := s.tlsConfig()
	require.NotNil(t, tc)
	assert.NotNil(t, tc.GetCertificate)

	// Plain HTTP without any TLS settings.
	assert.Nil(t, NewServer(service.NewHost(testThing(t)), DefaultConfig()).tlsConfig())
}
