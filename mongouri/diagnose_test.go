package mongouri

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnoseAuthFailure_IssuesComeFirst(t *testing.T) {
	rep := Validate("mongodb+srv://cluster0.example.net/mydb")
	got := DiagnoseAuthFailure(rep, KindAuthentication)

	assert.Equal(t, issueFix(IssueUsername), got[0])
	assert.Equal(t, issueFix(IssuePassword), got[1])
	assert.Equal(t, "Verify the username and password of the database user", got[2])

	var hint string
	for _, s := range got {
		if strings.HasPrefix(s, "Percent-encode special characters") {
			hint = s
		}
	}
	assert.Contains(t, hint, "@ → %40")
	assert.Contains(t, hint, "# → %23")
}

func TestDiagnoseAuthFailure_Kinds(t *testing.T) {
	valid := Validate("mongodb+srv://alice:pw@cluster0.example.net/mydb")

	tests := []struct {
		kind ErrorKind
		want []string
	}{
		{KindNetwork, []string{
			"Check your internet connection",
			"Verify the cluster host name is correct",
			"Check the cluster status",
		}},
		{KindTimeout, []string{
			"Check firewall settings",
			"Ensure your IP address is allowed in the cluster's network access list",
			"Check network connectivity to the cluster",
		}},
		{KindUnknown, []string{"Inspect the driver error message for details"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DiagnoseAuthFailure(valid, tt.kind))
		})
	}
}

func TestDiagnoseAuthFailure_Pure(t *testing.T) {
	rep := Validate("not-a-uri")
	a := DiagnoseAuthFailure(rep, KindTimeout)
	b := DiagnoseAuthFailure(rep, KindTimeout)
	assert.Equal(t, a, b)
	assert.Equal(t, []string{`Invalid URI format: missing "://" after scheme`}, rep.Messages())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "authentication", KindAuthentication.String())
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
