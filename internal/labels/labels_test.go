package labels

import "testing"

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"email":       "Email",
		"first_name":  "First Name",
		"last-name":   "Last Name",
		"dateOfBirth": "Date of Birth",
		"userID":      "User ID",
		"HTTPServer":  "HTTP Server",
		"address2":    "Address 2",
		"of_the_year": "Of the Year",
		"zip.code":    "Zip Code",
	}
	for in, want := range tests {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
