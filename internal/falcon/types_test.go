package falcon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictGetString(t *testing.T) {
	d := Dict{
		"name":  "FANCY BEAR",
		"count": float64(12),
	}

	assert.Equal(t, "FANCY BEAR", d.GetString("name"))
	assert.Equal(t, "", d.GetString("missing"))
	assert.Equal(t, "", d.GetString("count"), "non-string values read as empty")
}

func TestDictGetList(t *testing.T) {
	d := Dict{
		"actors": []interface{}{"FANCY BEAR", "VENOMOUS BEAR"},
		"name":   "not a list",
		"null":   nil,
	}

	assert.Equal(t, []interface{}{"FANCY BEAR", "VENOMOUS BEAR"}, d.GetList("actors"))

	for _, key := range []string{"missing", "name", "null"} {
		got := d.GetList(key)
		assert.NotNil(t, got, "key %q", key)
		assert.Empty(t, got, "key %q", key)
	}
}

func TestDictGetDicts(t *testing.T) {
	d := Dict{
		"labels": []interface{}{
			map[string]interface{}{"name": "MitreATTCK/Phishing"},
			"stray string",
			map[string]interface{}{"name": "Malware/PoisonIvy"},
			float64(7),
		},
	}

	labels := d.GetDicts("labels")
	assert.Len(t, labels, 2, "non-object elements are dropped")
	assert.Equal(t, "MitreATTCK/Phishing", labels[0].GetString("name"))
	assert.Equal(t, "Malware/PoisonIvy", labels[1].GetString("name"))

	assert.Empty(t, d.GetDicts("missing"))
}
