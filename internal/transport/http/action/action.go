package action

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "camp-ratings/internal/transport/http/response"
)

// 统一错误对象（配合 resp.Error(int, msg)）
type Err struct {
	Code   int
	Msg    string
	Fields map[string]string // 表单字段错误，"" 键为整单错误
	Err    error
}

func (e *Err) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *Err) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &Err{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &Err{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Err{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Err{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Err{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &Err{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Invalid 字段级校验错误，请求不落库
func Invalid(fields map[string]string) error {
	return &Err{Code: resp.CodeBadRequest, Msg: resp.CodeMsgMap[resp.CodeBadRequest], Fields: fields}
}

// Fail 错误统一出口：Err 带码回写，其余按 500
func Fail(c *gin.Context, err error) {
	var ae *Err
	if errors.As(err, &ae) {
		if ae.Fields != nil {
			c.JSON(http.StatusOK, resp.Invalid(ae.Fields))
			return
		}
		c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
		return
	}
	c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, err.Error()))
}

// OK 成功出口
func OK(c *gin.Context, data any) { c.JSON(http.StatusOK, resp.OK(data)) }
