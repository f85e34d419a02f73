package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/user/where2watch/internal/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 注册失败只可能是标签名写错，直接 panic
	if err := v.RegisterValidation("contenttype", ValidateContentType); err != nil {
		panic(err)
	}
	return v
}

// ValidateContentType 校验字段值为 movie 或 tv，gin 的 binding 引擎也复用它
func ValidateContentType(fl validator.FieldLevel) bool {
	return ContentType(fl.Field().String()).IsValid()
}

// Validate 写入前校验内容的顶层字段
func (c *Content) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+"("+fe.Tag()+")")
			}
			return apperror.Validation("content.validate", "字段不合法: %s", strings.Join(fields, ", "))
		}
		return apperror.Validation("content.validate", "%v", err)
	}
	return nil
}
