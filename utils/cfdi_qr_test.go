package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCFDIQR(t *testing.T) {
	text := "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx?id=5f2c8a1e-1b2c-4d3e-9f00-abcdef123456&amp;re=MAWN800101AB1&amp;rr=ASE931116231&amp;tt=0000016370.000000&amp;fe=Ab12Cd34"

	data, err := ParseCFDIQR(text)
	require.NoError(t, err)

	assert.Equal(t, "5F2C8A1E-1B2C-4D3E-9F00-ABCDEF123456", data.UUID)
	assert.Equal(t, "MAWN800101AB1", data.IssuerRFC)
	assert.Equal(t, "ASE931116231", data.ReceiverRFC)
	assert.True(t, dec("16370").Equal(data.Total))
	assert.Equal(t, "Ab12Cd34", data.SealTail)
	assert.True(t, data.MatchesReceiver("ASE931116231 AXA SEGUROS SA DE CV"))
	assert.False(t, data.MatchesReceiver("QCS931209G49 QUALITAS COMPAÑIA DE SEGUROS SA DE CV"))
}

func TestParseCFDIQRLegacyQuery(t *testing.T) {
	data, err := ParseCFDIQR("?re=MAWN800101AB1&rr=SPO830427DQ1&tt=0000002206.670000&id=ABC")
	require.NoError(t, err)

	assert.Equal(t, "SPO830427DQ1", data.ReceiverRFC)
	assert.True(t, dec("2206.67").Equal(data.Total))
}

func TestParseCFDIQRRejectsOtherCodes(t *testing.T) {
	_, err := ParseCFDIQR("https://example.com/hello")
	assert.Error(t, err)

	_, err = ParseCFDIQR("?id=ABC&re=X&rr=Y")
	assert.Error(t, err)
}
