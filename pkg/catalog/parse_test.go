package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const narrowHeader = "hdbid,name,number,series,image_url,description,category,brand,upc,release_date,prod_status,estimated_value,estimated_value_currency,slug"

const wideHeader = narrowHeader + ",ref_number,scale,aka,catalog_item_type_name,scraped_date,is_master_variant,master_variant_hdbid,variant_type,stickers,exclusivity,is_autographed,signed_by,features"

// narrowRow builds a 14-field record with the given leading fields.
func narrowRow(fields ...string) string {
	padded := make([]string, minSchemaFields)
	copy(padded, fields)
	return strings.Join(padded, ",")
}

// wideRow builds a 27-field record; extra is appended after the narrow
// columns in wide-schema order.
func wideRow(narrow []string, extra map[int]string) string {
	padded := make([]string, wideSchemaFields)
	copy(padded, narrow)
	for idx, val := range extra {
		padded[idx] = val
	}
	return strings.Join(padded, ",")
}

func TestParseEmptyPayload(t *testing.T) {
	for _, raw := range []string{"", "\n", "\r\n"} {
		result, err := Parse(raw)
		require.NoError(t, err)
		assert.Empty(t, result.Rows)
		assert.Zero(t, result.Skipped)
	}
}

func TestParseNarrowSchema(t *testing.T) {
	raw := narrowHeader + "\n" +
		narrowRow("101", "Sung Jinwoo", "1982", "Solo Leveling", "https://img/sj.png", "Shadow Monarch", "Animation", "Funko") + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.False(t, result.WideSchema)
	assert.Equal(t, minSchemaFields, result.HeaderWidth)

	row := result.Rows[0]
	assert.Equal(t, "101", row.ExternalID)
	assert.Equal(t, "Sung Jinwoo", row.Name)
	assert.Equal(t, "1982", row.Number)
	assert.Equal(t, "Solo Leveling", row.Series)
	assert.True(t, row.IsMasterVariant)
	assert.Equal(t, AutographUnknown, row.Autograph)
}

func TestParseMultilineQuotedField(t *testing.T) {
	raw := narrowHeader + "\n" +
		`102,"Sung Jinwoo, Igris",1982,Solo Leveling,img.png,"A description` + "\n" +
		`spanning two lines with ""escaped"" quotes",Animation,Funko,,,,,,slug-102` + "\n" +
		narrowRow("103", "Cha Hae-In", "1983", "Solo Leveling") + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Zero(t, result.Skipped)

	row := result.Rows[0]
	assert.Equal(t, "Sung Jinwoo, Igris", row.Name)
	assert.Equal(t, "A description\nspanning two lines with \"escaped\" quotes", row.Description)
	assert.Equal(t, "slug-102", row.Slug)
	assert.Equal(t, "103", result.Rows[1].ExternalID)
}

func TestParseBalancedQuotesRoundTrip(t *testing.T) {
	rows := []string{
		narrowRow("1", "Alpha", "1", "S"),
		`2,"Beta, with comma",2,S,,"multi` + "\n" + `line",,,,,,,,`,
		narrowRow("3", "Gamma", "3", "S"),
	}
	raw := narrowHeader + "\n" + strings.Join(rows, "\n") + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	assert.Len(t, result.Rows, len(rows))
	assert.Zero(t, result.Skipped)
}

func TestParseShortRowsAreSkippedNotFatal(t *testing.T) {
	raw := narrowHeader + "\n" +
		"too,short,row\n" +
		narrowRow("104", "Valid", "7", "S") + "\n" +
		"another,short\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, "104", result.Rows[0].ExternalID)
}

func TestParseWideSchemaShortRowSkipped(t *testing.T) {
	// A wide header governs every row of the load; a row with only the
	// legacy column count cannot fall back to the legacy heuristics.
	raw := wideHeader + "\n" +
		narrowRow("101", "Signed by someone", "1982", "Solo Leveling") + "\n" +
		wideRow([]string{"102", "Cha Hae-In", "1983", "Solo Leveling"}, nil) + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "102", result.Rows[0].ExternalID)
	assert.Equal(t, NotAutographed, result.Rows[0].Autograph)
}

func TestParseDuplicateExternalIDSkipped(t *testing.T) {
	raw := narrowHeader + "\n" +
		narrowRow("105", "First", "1", "S") + "\n" +
		narrowRow("105", "Second", "2", "S") + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "First", result.Rows[0].Name)
	assert.Equal(t, 1, result.Skipped)
}

func TestParseWideSchema(t *testing.T) {
	narrow := []string{"201", "Sung Jinwoo Chase", "1982", "Solo Leveling", "img.png", "desc", "Animation", "Funko", "889698577021", "2024-01-01", "Vaulted", "", "", "slug-201"}
	raw := wideHeader + "\n" + wideRow(narrow, map[int]string{
		colIsMasterVariant:  "0",
		colParentExternalID: "200",
		colStickers:         "Chase|Glow in the Dark",
		colExclusivity:      "Hot Topic",
		colIsAutographed:    "0",
	}) + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.True(t, result.WideSchema)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.False(t, row.IsMasterVariant)
	assert.Equal(t, "200", row.ParentExternalID)
	assert.Equal(t, []string{"Chase", "Glow in the Dark"}, row.FeatureTags)
	assert.Equal(t, "Hot Topic", row.ExclusivityTag)
	assert.Equal(t, NotAutographed, row.Autograph)
	assert.Equal(t, "889698577021", row.Barcode)
}

func TestParseWideSchemaAutographColumnIsAuthoritative(t *testing.T) {
	// The text screams "signed" but the column says no: the column wins.
	narrow := []string{"202", "Signed by nobody really", "5", "S", "", "autographed text", "", "", "", "", "", "", "", "signed-slug"}
	raw := wideHeader + "\n" + wideRow(narrow, map[int]string{
		colIsAutographed: "0",
	}) + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, NotAutographed, result.Rows[0].Autograph)

	raw = wideHeader + "\n" + wideRow(narrow, map[int]string{
		colIsAutographed: "1",
		colSignedBy:      "Taito Ban",
	}) + "\n"

	result, err = Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, Autographed, result.Rows[0].Autograph)
	assert.Equal(t, "Taito Ban", result.Rows[0].SignedBy)
}

func TestParseWideSchemaSelfParentIsMaster(t *testing.T) {
	narrow := []string{"203", "Master", "9", "S", "", "", "", "", "", "", "", "", "", ""}
	raw := wideHeader + "\n" + wideRow(narrow, map[int]string{
		colParentExternalID: "203",
	}) + "\n"

	result, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0].IsMasterVariant)
	assert.Empty(t, result.Rows[0].ParentExternalID)
}

func TestParseNarrowSchemaAutographHeuristic(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want AutographDecision
	}{
		{
			name: "signed in description",
			row:  narrowRow("301", "Sung Jinwoo", "1982", "S", "", "Signed by Taito Ban at AX"),
			want: Autographed,
		},
		{
			name: "autograph token in slug",
			row:  "302,Plain Name,1,S,,,,,,,,,," + "sung-jinwoo-autograph-coa",
			want: Autographed,
		},
		{
			name: "grading service in image url",
			row:  narrowRow("303", "Plain", "2", "S", "https://img/psa/dna-cert.png"),
			want: Autographed,
		},
		{
			name: "allow-listed external id",
			row:  narrowRow("884211", "Plain", "3", "S"),
			want: Autographed,
		},
		{
			name: "no evidence",
			row:  narrowRow("305", "Plain", "4", "S"),
			want: AutographUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(narrowHeader + "\n" + tt.row + "\n")
			require.NoError(t, err)
			require.Len(t, result.Rows, 1)
			assert.Equal(t, tt.want, result.Rows[0].Autograph)
		})
	}
}

func TestExtractSignerName(t *testing.T) {
	assert.Equal(t, "Taito Ban", extractSignerName("Sung Jinwoo signed by TAITO BAN, Anime Expo 2024"))
	assert.Equal(t, "Aleks Le", extractSignerName("Autographed by Aleks Le, with COA"))
	assert.Empty(t, extractSignerName("no signature phrasing here"))
	assert.Empty(t, extractSignerName("signed by ab")) // too short to be a name
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1982", "1982"},
		{"#1982", "1982"},
		{" 007 ", "007"},
		{"", ""},
		{"N/A", ""},
		{"12a", ""},
		{"-5", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeNumber(tt.in), "input %q", tt.in)
	}
}

func TestRowIsAutographed(t *testing.T) {
	assert.True(t, (&Row{Autograph: Autographed}).IsAutographed())
	assert.False(t, (&Row{Autograph: AutographUnknown}).IsAutographed())
	assert.False(t, (&Row{Autograph: NotAutographed}).IsAutographed())
}
