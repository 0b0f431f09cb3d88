package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &JSONParser{}, ForFormat("JSON"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("reqs.json"))
	assert.IsType(t, &CSVParser{}, ForFile("/tmp/Reqs.CSV"))
	assert.Nil(t, ForFile("reqs.txt"))
}

func TestJSONParser_Parse(t *testing.T) {
	input := `[
		{"req_type": "goal", "name": "Faster support", "statement": "Support answers fast."},
		{"req_type": "stakeholder", "name": "Support team", "segmentation": "internal", "interest": 80, "influence": 40}
	]`

	reqs, err := (&JSONParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "goal", reqs[0].ReqType)
	assert.Equal(t, "Faster support", reqs[0].Name)
	assert.Equal(t, 1, reqs[0].LineNum)

	assert.Equal(t, 2, reqs[1].LineNum)
	require.NotNil(t, reqs[1].Interest)
	assert.Equal(t, 80, *reqs[1].Interest)
	require.NotNil(t, reqs[1].Influence)
	assert.Equal(t, 40, *reqs[1].Influence)
}

func TestJSONParser_Parse_Invalid(t *testing.T) {
	_, err := (&JSONParser{}).Parse(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestCSVParser_Parse(t *testing.T) {
	input := `req_type,name,statement,priority,interest
goal,Faster support,Support answers fast.,,
functional_behavior,Login,Users log in.,MUST,
stakeholder,Support team,,,80
`

	reqs, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, "goal", reqs[0].ReqType)
	assert.Equal(t, 2, reqs[0].LineNum, "line numbers count the header")
	assert.Nil(t, reqs[0].Interest, "empty numeric cells stay unset")

	assert.Equal(t, "MUST", reqs[1].Priority)

	require.NotNil(t, reqs[2].Interest)
	assert.Equal(t, 80, *reqs[2].Interest)
	assert.Equal(t, 4, reqs[2].LineNum)
}

func TestCSVParser_Parse_MissingRequiredColumn(t *testing.T) {
	input := `name,statement
Faster support,Support answers fast.
`
	_, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "req_type")
}

func TestCSVParser_Parse_BadNumber(t *testing.T) {
	input := `req_type,name,interest
stakeholder,Support team,lots
`
	_, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interest")
}

func TestCSVParser_Parse_EmptyFile(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader(""))
	assert.Error(t, err)
}
