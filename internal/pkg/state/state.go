package state

import (
	"github.com/oklog/ulid/v2"
)

type State interface {
	Runs() Runs
}

type Runs interface {
	Create(*RunsCreateReq) (*RunsCreateResp, *ErrorResp)
	Delete(*RunsDeleteReq) (*RunsDeleteResp, *ErrorResp)
	Get(*RunsGetReq) (*RunsGetResp, *ErrorResp)
	List(*RunsListReq) (*RunsListResp, *ErrorResp)
	Update(*RunsUpdateReq) (*RunsUpdateResp, *ErrorResp)
}

type RunsCreateReq struct {
	Run *Run `json:"run"`
}

type RunsCreateResp struct{}

type RunsDeleteReq struct {
	ID ulid.ULID `json:"id"`
}

type RunsDeleteResp struct{}

type RunsGetReq struct {
	ID ulid.ULID `json:"id"`
}

type RunsGetResp struct {
	Run *Run `json:"run"`
}

// RunsListReq filters the listed runs by launch ID when LaunchID is set.
type RunsListReq struct {
	LaunchID string `json:"launch_id"`
}

// RunsListResp holds the runs newest first.
type RunsListResp struct {
	Runs []*RunStub `json:"runs"`
}

type RunsUpdateReq struct {
	Run *Run `json:"run"`
}

type RunsUpdateResp struct{}

type ErrorResp struct {
	ErrorBody `json:"error"`
}

type ErrorBody struct {
	Msg  string `json:"message"`
	Code int    `json:"code"`
	err  error
}

func NewErrorResp(e error, c int) *ErrorResp {
	return &ErrorResp{
		ErrorBody: ErrorBody{
			err:  e,
			Code: c,
			Msg:  e.Error(),
		},
	}
}

func (e *ErrorResp) Error() string { return e.Msg }

func (e *ErrorResp) Err() error { return e.err }

func (e *ErrorResp) StatusCode() int { return e.Code }

func (e *ErrorResp) String() string { return e.Msg }
