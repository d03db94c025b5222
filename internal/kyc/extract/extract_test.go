package extract

import (
	"strings"
	"testing"

	"github.com/idextract/idextract/internal/kyc"
	"github.com/stretchr/testify/require"
)

const frontSample = `Government of India
JOHN SMITH
DOB: 14/08/1991
Male
1234 5678 9012
VID : 9111 2222 3333 4444`

func TestExtractFront(t *testing.T) {
	got := Extract(frontSample, kyc.Front)
	require.Equal(t, kyc.FieldMapping{
		kyc.IdentityNumber: "1234 5678 9012",
		kyc.SecondaryID:    "9111 2222 3333 4444",
		kyc.DOB:            "14/08/1991",
		kyc.Gender:         "Male",
		kyc.Name:           "JOHN SMITH",
	}, got)
}

func TestExtractIsDeterministic(t *testing.T) {
	require.Equal(t, Extract(frontSample, kyc.Front), Extract(frontSample, kyc.Front))
	back := "S/O Ram\nPune 411001"
	require.Equal(t, Extract(back, kyc.Back), Extract(back, kyc.Back))
}

func TestExtractNoMatchesLeavesFieldsUnset(t *testing.T) {
	require.Empty(t, Extract("nothing useful here", kyc.Front))
	require.Empty(t, Extract("no postal code", kyc.Back))
}

func TestExtractSidesUseDisjointRules(t *testing.T) {
	got := Extract(frontSample+"\nPune 411001", kyc.Front)
	_, hasAddr := got[kyc.Address]
	require.False(t, hasAddr)

	back := Extract(frontSample+"\nPune 411001", kyc.Back)
	require.Len(t, back, 1)
	require.Contains(t, back, kyc.Address)
}

func TestIdentityNumberFirstMatch(t *testing.T) {
	got := Extract("x 1111 2222 3333 y\n4444 5555 6666", kyc.Front)
	require.Equal(t, "1111 2222 3333", got[kyc.IdentityNumber])

	// double spaces are not the identity shape
	got = Extract("1111  2222  3333", kyc.Front)
	require.NotContains(t, got, kyc.IdentityNumber)
}

func TestSecondaryIDLabelIsCaseInsensitive(t *testing.T) {
	got := Extract("vid:9111222233334444", kyc.Front)
	require.Equal(t, "9111222233334444", got[kyc.SecondaryID])

	got = Extract("9111 2222 3333 4444", kyc.Front)
	require.NotContains(t, got, kyc.SecondaryID, "unlabeled digits are not a secondary id")
}

func TestDOBLabeledBeatsBareDate(t *testing.T) {
	got := Extract("Issued 01/01/2020\nजन्म तिथि / DOB : 05-06-1985", kyc.Front)
	require.Equal(t, "05-06-1985", got[kyc.DOB])
}

func TestDOBFallsBackToBareDate(t *testing.T) {
	got := Extract("D0B 12/12/2000\nsomething 03/04/1999", kyc.Front)
	require.Equal(t, "12/12/2000", got[kyc.DOB])
}

func TestDOBRejectsOverlongYear(t *testing.T) {
	got := Extract("DOB 12/12/20001", kyc.Front)
	require.NotContains(t, got, kyc.DOB)

	got = Extract("DOB 12/12/20001\nBorn 03/04/1990", kyc.Front)
	require.Equal(t, "03/04/1990", got[kyc.DOB])
}

func TestDOBNativeLabel(t *testing.T) {
	got := Extract("जन्म तिथि: 21/03/1977", kyc.Front)
	require.Equal(t, "21/03/1977", got[kyc.DOB])
}

func TestGender(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"MALE", "Male"},
		{"पुरुष / Male", "Male"},
		{"Female", "Female"},
		{"महिला", "Female"},
		{"Female\nMale", "Male"},
		{"Males", ""},
	}
	for _, tt := range tests {
		got := Extract(tt.text, kyc.Front)
		require.Equal(t, tt.want, got[kyc.Gender], "text %q", tt.text)
	}
}

func TestIsName(t *testing.T) {
	require.True(t, IsName("JOHN SMITH"))
	require.True(t, IsName("  Priya Devi Sharma "))
	require.False(t, IsName("Male Female"))
	require.False(t, IsName("ABC123"))
	require.False(t, IsName("Smith"))
	require.False(t, IsName("Government of India"))
	require.False(t, IsName("John Smith."))
	require.False(t, IsName("DOB Date"))
	require.False(t, IsName("Vid Number"))
}

func TestNameFirstQualifyingLine(t *testing.T) {
	got := Extract("भारत सरकार\nABC123\nMale Female\nRavi   Kumar\nOther Person", kyc.Front)
	require.Equal(t, "Ravi Kumar", got[kyc.Name])
}

func TestAddressWindowDropsIDLines(t *testing.T) {
	lines := []string{
		"Address:",
		"VID 9111 2222 3333 4444",
		"S/O Ram Lal, 12 Main Road",
		"Shivaji Nagar, Pune 411005",
		"Maharashtra",
		"India",
		"help@uidai.gov.in",
	}
	got := Extract(strings.Join(lines, "\n"), kyc.Back)
	require.Equal(t, "Address: S/O Ram Lal, 12 Main Road Shivaji Nagar, Pune 411005 Maharashtra India help@uidai.gov.in", got[kyc.Address])
	require.NotContains(t, got[kyc.Address], "9111")
}

func TestAddressWindowClampsAndLimitsToThreeLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e", "Pune 411001", "f", "1234 5678 9012", "g", "h"}
	got := Extract(strings.Join(lines, "\n"), kyc.Back)
	require.Equal(t, "c d e Pune 411001 f g", got[kyc.Address])

	got = Extract("Pune 411001\nnext", kyc.Back)
	require.Equal(t, "Pune 411001 next", got[kyc.Address])
}

func TestAddressSkipsBlankLines(t *testing.T) {
	got := Extract("House 4\n\n   \nDelhi 110001", kyc.Back)
	require.Equal(t, "House 4 Delhi 110001", got[kyc.Address])
}

func TestAddressRequiresBareSixDigits(t *testing.T) {
	got := Extract("code 12345678\nref 1234567", kyc.Back)
	require.NotContains(t, got, kyc.Address)
}

func TestCountIdentity(t *testing.T) {
	require.Equal(t, 0, CountIdentity("no numbers"))
	require.Equal(t, 2, CountIdentity("1234 5678 9012\nagain 1234 5678 9012"))
}

func TestRulesAreOrderedPerSide(t *testing.T) {
	var front []kyc.Field
	for _, r := range Rules(kyc.Front) {
		front = append(front, r.Field)
	}
	require.Equal(t, kyc.FrontFields, front)
	require.Len(t, Rules(kyc.Back), 1)
	require.Equal(t, kyc.Address, Rules(kyc.Back)[0].Field)

	dob := Rules(kyc.Front)[2]
	require.Len(t, dob.Patterns, 2, "labeled pattern then bare fallback")
}
