package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

type sample struct {
	Name      string   `json:"project_name" validate:"required"`
	CompanyID string   `json:"companyId" validate:"required,objectid"`
	Emails    []string `json:"suppliers_email" validate:"required,min=1,dive,email"`
	Status    string   `json:"project_status" validate:"omitempty,oneof=draft active"`
}

func TestValidateReportsFirstViolation(t *testing.T) {
	v := New()

	err := v.Validate(&sample{CompanyID: "65a1b2c3d4e5f60718293a4b", Emails: []string{"a@b.co"}})
	require.Error(t, err)

	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
	assert.Equal(t, "project_name is required", appErr.Message())
	assert.Equal(t, "project_name", appErr.Details()["field"])
}

func TestValidateRules(t *testing.T) {
	v := New()
	base := sample{Name: "Depot", CompanyID: "65a1b2c3d4e5f60718293a4b", Emails: []string{"a@b.co"}}
	require.NoError(t, v.Validate(&base))

	badID := base
	badID.CompanyID = "42"
	assert.Equal(t, "companyId must be a valid id", errorbank.From(v.Validate(&badID)).Message())

	badEmail := base
	badEmail.Emails = []string{"not-an-email"}
	assert.Contains(t, errorbank.From(v.Validate(&badEmail)).Message(), "must be a valid email")

	badStatus := base
	badStatus.Status = "paused"
	assert.Equal(t, "project_status must be one of [draft active]", errorbank.From(v.Validate(&badStatus)).Message())
}
