package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Login      string `json:"login" validate:"required,min=3,max=10,login"`
	WebsiteURL string `json:"websiteUrl" validate:"required,blogurl"`
	LikeStatus string `json:"likeStatus" validate:"required,likestatus"`
}

func TestValidatorAcceptsValid(t *testing.T) {
	v := New()
	err := v.Struct(sample{Login: "user_1", WebsiteURL: "https://my.blog/path", LikeStatus: "Dislike"})
	assert.NoError(t, err)
}

func TestValidatorUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{Login: "bad login", WebsiteURL: "http://insecure.blog", LikeStatus: "Love"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"login", "websiteUrl", "likeStatus"}, fields)
}
