package util

import (
	"reflect"
	"strings"
)

// jsonFieldName 校验错误里使用 json 字段名
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
