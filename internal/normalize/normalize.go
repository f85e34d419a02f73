package normalize

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sync/atomic"

	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/model"
	"go.uber.org/zap"
)

// parseFailures 被吞掉的解析错误计数，用于观察静默的数据损坏
var parseFailures atomic.Int64

// ParseFailures 返回进程启动以来被吞掉的解析错误次数
func ParseFailures() int64 {
	return parseFailures.Load()
}

// Normalize 将任意未定型的值转换为 []T
//   - nil：返回 fallback
//   - 已经是 []T：原样返回，不做元素校验
//   - string / []byte / json.RawMessage：按 JSON 解析，只接受数组
//   - 其它已解析的 JSON 数组（如 []any）：重新编码后按 []T 解析
//
// 任何解析失败都返回 fallback，不向上传播错误
func Normalize[T any](raw any, fallback []T) []T {
	return normalize(raw, fallback, "")
}

// Decode 与 Normalize 规则相同，但格式错误时返回 PARSE 类型的错误
// 空值（nil、空串、合法但非数组的 JSON）返回 nil, nil
func Decode[T any](raw any) ([]T, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []T:
		return v, nil
	case string:
		return decode[T]([]byte(v))
	case []byte:
		return decode[T](v)
	case json.RawMessage:
		return decode[T](v)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, nil
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, apperror.Wrap(apperror.TypeParse, "normalize.decode", "无法重新编码数组", err)
	}
	return decode[T](data)
}

func normalize[T any](raw any, fallback []T, column string) []T {
	out, err := Decode[T](raw)
	if err != nil {
		recordFailure(column, err)
		return fallback
	}
	if out == nil {
		return fallback
	}
	return out
}

func decode[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != '[' {
		// 合法 JSON 但不是数组（对象、null、数字）属于正常的空值
		if !json.Valid(data) {
			return nil, apperror.New(apperror.TypeParse, "normalize.decode", "不是合法的 JSON")
		}
		return nil, nil
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperror.Wrap(apperror.TypeParse, "normalize.decode", "JSON 数组格式错误", err)
	}
	return out, nil
}

func recordFailure(column string, err error) {
	parseFailures.Add(1)
	zap.L().Named("normalize").Warn("JSON 列解析失败，已使用默认值",
		zap.String("column", column),
		zap.Error(err),
	)
}

// Providers 规范化 watch_providers 列
func Providers(raw any) []model.WatchProvider {
	return normalize(raw, []model.WatchProvider{}, "watch_providers")
}

// Cast 规范化 cast_info 列
func Cast(raw any) []model.CastMember {
	return normalize(raw, []model.CastMember{}, "cast_info")
}

// Seasons 规范化 seasons 列
func Seasons(raw any) []model.Season {
	return normalize(raw, []model.Season{}, "seasons")
}

// Images 规范化 images 列
func Images(raw any) []model.Image {
	return normalize(raw, []model.Image{}, "images")
}

// EmbedVideos 规范化 embed_videos 列
func EmbedVideos(raw any) []model.EmbedVideo {
	return normalize(raw, []model.EmbedVideo{}, "embed_videos")
}
