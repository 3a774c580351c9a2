package httpapi_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scriptd/internal/app/content"
	"github.com/slok/scriptd/internal/app/run"
	"github.com/slok/scriptd/internal/httpapi"
	"github.com/slok/scriptd/internal/model"
)

type mockRunService struct{ mock.Mock }

func (m *mockRunService) Run(ctx context.Context, req run.Request) (*model.ProcessResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*model.ProcessResult)
	return res, args.Error(1)
}

type mockContentService struct{ mock.Mock }

func (m *mockContentService) Get(ctx context.Context, req content.Request) (*model.ScriptContent, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*model.ScriptContent)
	return res, args.Error(1)
}

func TestNewHandler(t *testing.T) {
	tests := map[string]struct {
		cfg    httpapi.HandlerConfig
		expErr bool
	}{
		"Execute mode with a run service should be valid.": {
			cfg: httpapi.HandlerConfig{RunService: &mockRunService{}},
		},

		"Content mode with a content service should be valid.": {
			cfg: httpapi.HandlerConfig{Mode: model.ResponseModeContent, ContentService: &mockContentService{}},
		},

		"Execute mode without a run service should fail.": {
			cfg:    httpapi.HandlerConfig{ContentService: &mockContentService{}},
			expErr: true,
		},

		"Content mode without a content service should fail.": {
			cfg:    httpapi.HandlerConfig{Mode: model.ResponseModeContent, RunService: &mockRunService{}},
			expErr: true,
		},

		"An unknown mode should fail.": {
			cfg:    httpapi.HandlerConfig{Mode: "download", RunService: &mockRunService{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := httpapi.NewHandler(test.cfg)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandlerExecuteMode(t *testing.T) {
	tests := map[string]struct {
		path           string
		exposeExitCode bool
		mock           func(m *mockRunService)
		expStatus      int
		expBody        string
		expHeaders     map[string]string
	}{
		"A successful script should return its stdout.": {
			path: "/run/hello.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "hello.sh"}).Once().Return(&model.ProcessResult{Stdout: "hi\n", Stderr: "warn\n"}, nil)
			},
			expStatus:  http.StatusOK,
			expBody:    "hi\n",
			expHeaders: map[string]string{"Content-Type": "text/plain; charset=utf-8", "X-Exit-Code": ""},
		},

		"A failed script with only stderr should return its stderr with 200.": {
			path: "/run/fail.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "fail.sh"}).Once().Return(&model.ProcessResult{Stderr: "boom\n", ExitCode: 2}, nil)
			},
			expStatus: http.StatusOK,
			expBody:   "boom\n",
		},

		"The exit code should be exposed when enabled.": {
			path:           "/run/fail.sh",
			exposeExitCode: true,
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "fail.sh"}).Once().Return(&model.ProcessResult{Stderr: "boom\n", ExitCode: 2}, nil)
			},
			expStatus:  http.StatusOK,
			expBody:    "boom\n",
			expHeaders: map[string]string{"X-Exit-Code": "2"},
		},

		"Nested script names should be passed as they are.": {
			path: "/run/sub/nested.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "sub/nested.sh"}).Once().Return(&model.ProcessResult{Stdout: "nested\n"}, nil)
			},
			expStatus: http.StatusOK,
			expBody:   "nested\n",
		},

		"A missing script should return 404 with the path.": {
			path: "/run/missing.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "missing.sh"}).Once().Return(nil, fmt.Errorf("script /scripts/missing.sh: %w", model.ErrNotFound))
			},
			expStatus: http.StatusNotFound,
			expBody:   "script /scripts/missing.sh: not found\n",
		},

		"An invalid script name should return 400.": {
			path: "/run/evil.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "evil.sh"}).Once().Return(nil, fmt.Errorf("outside: %w", model.ErrNotValid))
			},
			expStatus: http.StatusBadRequest,
			expBody:   "outside: not valid\n",
		},

		"A timeout should return 504.": {
			path: "/run/slow.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "slow.sh"}).Once().Return(nil, fmt.Errorf("killed: %w", model.ErrTimeout))
			},
			expStatus: http.StatusGatewayTimeout,
			expBody:   "killed: timeout\n",
		},

		"Other errors should return 500 with the error.": {
			path: "/run/hello.sh",
			mock: func(m *mockRunService) {
				m.On("Run", mock.Anything, run.Request{ScriptName: "hello.sh"}).Once().Return(nil, fmt.Errorf("permission denied"))
			},
			expStatus: http.StatusInternalServerError,
			expBody:   "permission denied\n",
		},

		"Other methods should not be allowed.": {
			path:      "/run/hello.sh",
			mock:      func(m *mockRunService) {},
			expStatus: http.StatusMethodNotAllowed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &mockRunService{}
			test.mock(m)

			h, err := httpapi.NewHandler(httpapi.HandlerConfig{RunService: m, ExposeExitCode: test.exposeExitCode})
			require.NoError(err)

			method := http.MethodGet
			if test.expStatus == http.StatusMethodNotAllowed {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, test.path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			resp := rec.Result()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(test.expStatus, resp.StatusCode)
			if test.expBody != "" {
				assert.Equal(test.expBody, string(body))
			}
			assert.NotEmpty(resp.Header.Get("X-Run-Id"))
			for k, v := range test.expHeaders {
				assert.Equal(v, resp.Header.Get(k), "header %s", k)
			}

			m.AssertExpectations(t)
		})
	}
}

func TestHandlerContentMode(t *testing.T) {
	tests := map[string]struct {
		path       string
		mock       func(m *mockContentService)
		expStatus  int
		expBody    string
		expHeaders map[string]string
	}{
		"An existing script should be returned as an attachment.": {
			path: "/run/hello.sh",
			mock: func(m *mockContentService) {
				m.On("Get", mock.Anything, content.Request{ScriptName: "hello.sh"}).Once().Return(&model.ScriptContent{Name: "hello.sh", Data: []byte("echo hi\n")}, nil)
			},
			expStatus: http.StatusOK,
			expBody:   "echo hi\n",
			expHeaders: map[string]string{
				"Content-Disposition": `attachment; filename="hello.sh"`,
				"Content-Type":        "application/octet-stream",
			},
		},

		"A missing script should return 404.": {
			path: "/run/missing.sh",
			mock: func(m *mockContentService) {
				m.On("Get", mock.Anything, content.Request{ScriptName: "missing.sh"}).Once().Return(nil, fmt.Errorf("script /scripts/missing.sh: %w", model.ErrNotFound))
			},
			expStatus: http.StatusNotFound,
			expBody:   "script /scripts/missing.sh: not found\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &mockContentService{}
			test.mock(m)

			h, err := httpapi.NewHandler(httpapi.HandlerConfig{Mode: model.ResponseModeContent, ContentService: m})
			require.NoError(err)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.path, nil))

			resp := rec.Result()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(test.expStatus, resp.StatusCode)
			assert.Equal(test.expBody, string(body))
			for k, v := range test.expHeaders {
				assert.Equal(v, resp.Header.Get(k), "header %s", k)
			}

			m.AssertExpectations(t)
		})
	}
}

func TestHandlerHealth(t *testing.T) {
	h, err := httpapi.NewHandler(httpapi.HandlerConfig{RunService: &mockRunService{}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}
