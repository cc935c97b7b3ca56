// Package errors 将 go-openapi 风格的错误渲染为统一的 response.Response 信封.
package errors

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-openapi/errors"

	"slurm-eta/internal/pkg/response"
)

// DefaultHTTPCode 用于校验类错误 (go-openapi 的校验错误码不在 HTTP 范围内).
var DefaultHTTPCode = http.StatusBadRequest

const maximumValidHTTPCode = 600

func errorAsJSON(detail string) []byte {
	//nolint:errchkjson
	b, _ := json.Marshal(response.Error(detail))
	return b
}

func flattenComposite(errs *errors.CompositeError) *errors.CompositeError {
	var res []error
	for _, er := range errs.Errors {
		switch e := er.(type) {
		case *errors.CompositeError:
			if e != nil && len(e.Errors) > 0 {
				flat := flattenComposite(e)
				if len(flat.Errors) > 0 {
					res = append(res, flat.Errors...)
				}
			}
		default:
			if e != nil {
				res = append(res, e)
			}
		}
	}
	return errors.CompositeValidationError(res...)
}

// StatusCode 返回 err 对应的 HTTP 状态码.
func StatusCode(err error) int {
	switch e := err.(type) {
	case nil:
		return http.StatusInternalServerError
	case *errors.CompositeError:
		if er := flattenComposite(e); len(er.Errors) > 0 {
			return StatusCode(er.Errors[0])
		}
		return http.StatusInternalServerError
	case errors.Error:
		value := reflect.ValueOf(e)
		if value.Kind() == reflect.Ptr && value.IsNil() {
			return http.StatusInternalServerError
		}
		return asHTTPCode(int(e.Code()))
	default:
		return http.StatusInternalServerError
	}
}

// ServeError 写出错误响应. 组合错误只保留第一个.
func ServeError(rw http.ResponseWriter, r *http.Request, err error) {
	rw.Header().Set("Content-Type", "application/json")
	switch e := err.(type) {
	case *errors.CompositeError:
		er := flattenComposite(e)
		if len(er.Errors) > 0 {
			ServeError(rw, r, er.Errors[0])
		} else {
			ServeError(rw, r, nil)
		}
		return
	case *errors.MethodNotAllowedError:
		rw.Header().Add("Allow", strings.Join(e.Allowed, ","))
	}

	code := StatusCode(err)
	rw.WriteHeader(code)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	detail := "Unknown error"
	if v := reflect.ValueOf(err); err != nil && !(v.Kind() == reflect.Ptr && v.IsNil()) {
		detail = err.Error()
	}
	_, _ = rw.Write(errorAsJSON(detail))
}

func asHTTPCode(input int) int {
	if input >= maximumValidHTTPCode {
		return DefaultHTTPCode
	}
	return input
}
