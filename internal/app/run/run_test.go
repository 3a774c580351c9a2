package run_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slok/scriptd/internal/app/run"
	"github.com/slok/scriptd/internal/log"
	"github.com/slok/scriptd/internal/model"
	"github.com/slok/scriptd/internal/script/scriptmock"
)

type mocks struct {
	locator  *scriptmock.MockLocator
	preparer *scriptmock.MockPreparer
	env      *scriptmock.MockEnvironmentProvider
	runner   *scriptmock.MockRunner
}

func newMocks() mocks {
	return mocks{
		locator:  &scriptmock.MockLocator{},
		preparer: &scriptmock.MockPreparer{},
		env:      &scriptmock.MockEnvironmentProvider{},
		runner:   &scriptmock.MockRunner{},
	}
}

func (m mocks) assertExpectations(t *testing.T) {
	m.locator.AssertExpectations(t)
	m.preparer.AssertExpectations(t)
	m.env.AssertExpectations(t)
	m.runner.AssertExpectations(t)
}

func TestNewService(t *testing.T) {
	m := newMocks()

	tests := map[string]struct {
		cfg    run.ServiceConfig
		expErr bool
	}{
		"Valid configuration should create service successfully": {
			cfg: run.ServiceConfig{Locator: m.locator, Preparer: m.preparer, Environment: m.env, Runner: m.runner, Logger: log.Noop},
		},

		"Missing logger should use noop logger": {
			cfg: run.ServiceConfig{Locator: m.locator, Preparer: m.preparer, Environment: m.env, Runner: m.runner},
		},

		"Missing locator should fail": {
			cfg:    run.ServiceConfig{Preparer: m.preparer, Environment: m.env, Runner: m.runner},
			expErr: true,
		},

		"Missing preparer should fail": {
			cfg:    run.ServiceConfig{Locator: m.locator, Environment: m.env, Runner: m.runner},
			expErr: true,
		},

		"Missing environment should fail": {
			cfg:    run.ServiceConfig{Locator: m.locator, Preparer: m.preparer, Runner: m.runner},
			expErr: true,
		},

		"Missing runner should fail": {
			cfg:    run.ServiceConfig{Locator: m.locator, Preparer: m.preparer, Environment: m.env},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			svc, err := run.NewService(test.cfg)

			if test.expErr {
				assert.Error(err)
				assert.Nil(svc)
			} else {
				assert.NoError(err)
				assert.NotNil(svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	script := model.ResolvedScript{Name: "hello.sh", Path: "/scripts/hello.sh"}
	env, _ := model.NewExecutionEnvironment(map[string]string{"PATH": "/bin"})

	tests := map[string]struct {
		req       run.Request
		mock      func(m mocks)
		expResult *model.ProcessResult
		expErr    error
	}{
		"Running an existing script should execute the whole pipeline.": {
			req: run.Request{ScriptName: "hello.sh"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "hello.sh").Once().Return(&script, nil)
				m.preparer.On("Prepare", mock.Anything, script).Once().Return(nil)
				m.env.On("Environment", mock.Anything).Once().Return(env, nil)
				m.runner.On("Run", mock.Anything, script, env).Once().Return(&model.ProcessResult{Stdout: "hi\n"}, nil)
			},
			expResult: &model.ProcessResult{Stdout: "hi\n"},
		},

		"A script exiting with an error code should not be an error.": {
			req: run.Request{ScriptName: "hello.sh"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "hello.sh").Once().Return(&script, nil)
				m.preparer.On("Prepare", mock.Anything, script).Once().Return(nil)
				m.env.On("Environment", mock.Anything).Once().Return(env, nil)
				m.runner.On("Run", mock.Anything, script, env).Once().Return(&model.ProcessResult{Stderr: "boom\n", ExitCode: 1}, nil)
			},
			expResult: &model.ProcessResult{Stderr: "boom\n", ExitCode: 1},
		},

		"A missing script should stop the pipeline with not found.": {
			req: run.Request{ScriptName: "missing.sh"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "missing.sh").Once().Return(nil, fmt.Errorf("script /scripts/missing.sh: %w", model.ErrNotFound))
			},
			expErr: model.ErrNotFound,
		},

		"An invalid script name should stop the pipeline with not valid.": {
			req: run.Request{ScriptName: "../etc/passwd"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "../etc/passwd").Once().Return(nil, model.ErrNotValid)
			},
			expErr: model.ErrNotValid,
		},

		"A preparation failure should stop the pipeline.": {
			req: run.Request{ScriptName: "hello.sh"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "hello.sh").Once().Return(&script, nil)
				m.preparer.On("Prepare", mock.Anything, script).Once().Return(fmt.Errorf("permission denied"))
			},
			expErr: assert.AnError,
		},

		"An environment failure should stop the pipeline.": {
			req: run.Request{ScriptName: "hello.sh"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "hello.sh").Once().Return(&script, nil)
				m.preparer.On("Prepare", mock.Anything, script).Once().Return(nil)
				m.env.On("Environment", mock.Anything).Once().Return(model.ExecutionEnvironment{}, fmt.Errorf("mkdir failed"))
			},
			expErr: assert.AnError,
		},

		"A timeout should be returned.": {
			req: run.Request{ScriptName: "hello.sh"},
			mock: func(m mocks) {
				m.locator.On("Locate", mock.Anything, "hello.sh").Once().Return(&script, nil)
				m.preparer.On("Prepare", mock.Anything, script).Once().Return(nil)
				m.env.On("Environment", mock.Anything).Once().Return(env, nil)
				m.runner.On("Run", mock.Anything, script, env).Once().Return(nil, model.ErrTimeout)
			},
			expErr: model.ErrTimeout,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			anError := assert.AnError
			assert := assert.New(t)

			m := newMocks()
			test.mock(m)

			svc, err := run.NewService(run.ServiceConfig{
				Locator:     m.locator,
				Preparer:    m.preparer,
				Environment: m.env,
				Runner:      m.runner,
			})
			assert.NoError(err)

			gotResult, err := svc.Run(context.Background(), test.req)

			switch {
			case test.expErr == anError:
				assert.Error(err)
				assert.Nil(gotResult)
			case test.expErr != nil:
				assert.ErrorIs(err, test.expErr)
				assert.Nil(gotResult)
			default:
				assert.NoError(err)
				assert.Equal(test.expResult, gotResult)
			}

			m.assertExpectations(t)
		})
	}
}
