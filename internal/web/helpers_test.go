package web

import (
	"net/url"
	"strconv"
)

func urlEncode(s string) string { return url.QueryEscape(s) }

func itoa(i int64) string { return strconv.FormatInt(i, 10) }
