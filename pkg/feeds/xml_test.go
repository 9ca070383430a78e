package feeds

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestDecodeXMLUsers(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<users>
  <user>
    <email>martin.forster@x.test</email>
    <name>Forster, Martin</name>
    <hobbies>
      <hobby>Schreiben</hobby>
      <hobby> Lesen </hobby>
      <hobby></hobby>
    </hobbies>
  </user>
  <user>
    <email> ellen.wickern@x.test </email>
    <name></name>
  </user>
</users>`

	records, err := decodeXMLUsers(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, models.SourceXML, first.Source)
	assert.Equal(t, "martin.forster@x.test", first.Email)
	assert.Equal(t, "Forster, Martin", first.Name)
	assert.Equal(t, []string{"Schreiben", "Lesen"}, first.Hobbies)

	second := records[1]
	assert.Equal(t, "ellen.wickern@x.test", second.Email)
	assert.Empty(t, second.Name)
	assert.Empty(t, second.Hobbies)
}

func TestDecodeXMLUsersMalformed(t *testing.T) {
	_, err := decodeXMLUsers(strings.NewReader("<users><user>"))
	require.Error(t, err)
}
