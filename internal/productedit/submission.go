package productedit

import "errors"

var (
	// ErrSubmitInProgress 提交进行中，重复保存被忽略
	ErrSubmitInProgress = errors.New("submit already in progress")
	// ErrReferenceDataUnavailable 参考数据加载失败，表单不可提交
	ErrReferenceDataUnavailable = errors.New("reference data unavailable")
)

// SubmitState 提交状态
type SubmitState string

const (
	StateIdle          SubmitState = "idle"
	StateValidating    SubmitState = "validating"
	StateSubmitting    SubmitState = "submitting"
	StateSucceeded     SubmitState = "succeeded"
	StateFailedField   SubmitState = "failed_field"
	StateFailedGeneral SubmitState = "failed_general"
)

// msgSaveFailed 整体失败且服务端未给出文案时的横幅
const msgSaveFailed = "Unable to save the product. Please try again."

// SubmitView 提交状态快照
type SubmitView struct {
	State       SubmitState `json:"state"`
	FieldErrors FieldErrors `json:"field_errors"`
	Banner      string      `json:"banner,omitempty"`
}

// submission 提交状态机，由 Session 在持锁状态下驱动
type submission struct {
	state       SubmitState
	fieldErrors FieldErrors
	banner      string
}

func newSubmission() submission {
	return submission{state: StateIdle, fieldErrors: FieldErrors{}}
}

// begin idle / failed / succeeded -> validating；提交中拒绝
func (s *submission) begin() error {
	if s.state == StateSubmitting || s.state == StateValidating {
		return ErrSubmitInProgress
	}
	s.state = StateValidating
	s.fieldErrors = FieldErrors{}
	s.banner = ""
	return nil
}

// rejectLocal 本地校验失败，回到 idle 并标注字段
func (s *submission) rejectLocal(errs FieldErrors) {
	s.state = StateIdle
	s.fieldErrors = errs.Clone()
}

func (s *submission) submitting() {
	s.state = StateSubmitting
}

func (s *submission) succeed() {
	s.state = StateSucceeded
	s.fieldErrors = FieldErrors{}
	s.banner = ""
}

// fail 区分字段级与整体失败；字段级失败不展示横幅
func (s *submission) fail(err error) {
	var submitErr *SubmitError
	if errors.As(err, &submitErr) && len(submitErr.Fields) > 0 {
		s.state = StateFailedField
		s.fieldErrors = submitErr.Fields.Clone()
		s.banner = ""
		return
	}
	s.state = StateFailedGeneral
	s.fieldErrors = FieldErrors{}
	s.banner = msgSaveFailed
	if submitErr != nil && submitErr.Message != "" {
		s.banner = submitErr.Message
	}
}

func (s *submission) view() SubmitView {
	return SubmitView{State: s.state, FieldErrors: s.fieldErrors.Clone(), Banner: s.banner}
}
