package httpserver

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"storefront-api/internal/domain"
)

var (
	translatorOnce sync.Once
	translator     ut.Translator
)

// setupValidator makes gin's validator report json field names in English.
func setupValidator() {
	translatorOnce.Do(func() {
		translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, translator)
	})
}

// bindJSON decodes the body into dst and turns binding failures into a
// ValidationError carrying the first translated message.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if translator != nil {
			return domain.Invalid("%s", verrs[0].Translate(translator))
		}
		return domain.Invalid("%s", verrs[0].Error())
	}
	if errors.Is(err, io.EOF) {
		return domain.Invalid("request body required")
	}
	return domain.Invalid("invalid request body")
}
