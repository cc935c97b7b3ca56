package response

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Response 为 HTTP 接口统一的响应信封. 出错时仅 Detail 有意义.
type Response struct {
	Count    int         `json:"count"`
	Previous url.URL     `json:"previous" swaggertype:"string"`
	Next     url.URL     `json:"next" swaggertype:"string"`
	Results  interface{} `json:"results"`
	Detail   string      `json:"detail"`
}

// Error 构造只包含错误描述的响应.
func Error(detail string) Response {
	return Response{Count: -1, Detail: detail}
}

// MarshalJSON renders Previous and Next as URL strings instead of struct fields.
func (r Response) MarshalJSON() ([]byte, error) {
	type alias struct {
		Count    int         `json:"count"`
		Previous string      `json:"previous"`
		Next     string      `json:"next"`
		Results  interface{} `json:"results"`
		Detail   string      `json:"detail"`
	}
	return json.Marshal(alias{
		Count:    r.Count,
		Previous: r.Previous.String(),
		Next:     r.Next.String(),
		Results:  r.Results,
		Detail:   r.Detail,
	})
}

// BuildPageLinks constructs previous and next page URLs from base, keeping its
// other query parameters. Links that fall outside [1, lastPage] stay empty.
func BuildPageLinks(base *url.URL, page, pageSize, total int) (prev, next url.URL) {
	if base == nil || pageSize <= 0 {
		return url.URL{}, url.URL{}
	}
	lastPage := (total + pageSize - 1) / pageSize

	makeURL := func(p int) url.URL {
		u := *base
		q := u.Query()
		q.Set("page", strconv.Itoa(max(p, 1)))
		q.Set("page_size", strconv.Itoa(pageSize))
		u.RawQuery = q.Encode()
		return u
	}

	if page > 1 {
		prev = makeURL(min(page-1, max(lastPage, 1)))
	}
	if page < lastPage {
		next = makeURL(page + 1)
	}
	return
}
