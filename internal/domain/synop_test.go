package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

const testStation = "42182"

// report wraps groups in the preamble the text export puts before Section 1.
func report(groups string) string {
	return "202401150600 AAXX 15061 " + testStation + " " + groups + "="
}

func TestSection_Next(t *testing.T) {
	assert.Equal(t, Section3, Section1.next("333"))
	assert.Equal(t, Section1, Section1.next("10120"))
	assert.Equal(t, Section3, Section3.next("10120"))
	assert.Equal(t, Section3, Section3.next("333"))
	assert.Equal(t, "section1", Section1.String())
	assert.Equal(t, "section3", Section3.String())
}

func TestSignedTenths(t *testing.T) {
	tests := []struct {
		group    string
		expected *float64 // nil means Missing
		ok       bool
	}{
		{"10120", ptr.To(12.0), true},
		{"11120", ptr.To(-12.0), true},
		{"10301", ptr.To(30.1), true},
		{"10000", ptr.To(0.0), true},
		{"10999", nil, true},
		{"11999", nil, true},
		{"1012X", nil, false},
		{"1XXXX", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, ok := signedTenths(tt.group)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			if tt.expected == nil {
				assert.True(t, got.Missing)
				return
			}
			assert.False(t, got.Missing)
			assert.InDelta(t, *tt.expected, got.Value, 1e-9)
		})
	}
}

func TestPressure(t *testing.T) {
	tests := []struct {
		group    string
		expected *float64
		ok       bool
	}{
		{"40085", ptr.To(1008.5), true},
		{"40050", ptr.To(1005.0), true},
		{"40146", ptr.To(1014.6), true},
		{"49987", ptr.To(998.7), true},
		{"38352", ptr.To(835.2), true},
		{"4XXXX", nil, true},
		{"3X123", nil, true},
		{"4012X", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, ok := pressure(tt.group)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			if tt.expected == nil {
				assert.True(t, got.Missing)
				return
			}
			assert.InDelta(t, *tt.expected, got.Value, 1e-9)
		})
	}
}

func TestPressureTendency(t *testing.T) {
	tests := []struct {
		group          string
		characteristic *int
		change         *float64
		ok             bool
	}{
		{"52008", ptr.To(2), ptr.To(0.8), true},
		{"50000", ptr.To(0), ptr.To(0.0), true},
		{"54000", ptr.To(4), ptr.To(0.0), true},
		{"55010", ptr.To(5), ptr.To(-1.0), true},
		{"58041", ptr.To(8), ptr.To(-4.1), true},
		{"5X041", nil, nil, true},
		{"52X41", nil, nil, true},
		{"59012", nil, nil, false},
		{"5204X", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, ok := pressureTendency(tt.group)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			if tt.characteristic == nil {
				assert.True(t, got.characteristic.Missing)
				assert.True(t, got.change.Missing)
				return
			}
			assert.Equal(t, *tt.characteristic, got.characteristic.Value)
			assert.InDelta(t, *tt.change, got.change.Value, 1e-9)
		})
	}
}

func TestPrecipitation(t *testing.T) {
	tests := []struct {
		group    string
		expected *float64
		ok       bool
	}{
		{"60002", ptr.To(0.0), true},
		{"60121", ptr.To(12.0), true},
		{"69892", ptr.To(989.0), true},
		{"69902", ptr.To(0.1), true},
		{"69912", nil, true},
		{"69992", nil, true},
		{"6XXXX", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, ok := precipitation(tt.group)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			if tt.expected == nil {
				assert.True(t, got.Missing)
				return
			}
			assert.InDelta(t, *tt.expected, got.Value, 1e-9)
		})
	}
}

func TestDecodeSynop_TemperatureSign(t *testing.T) {
	f := DecodeSynop(report("11508 80402 10120"), testStation)
	assert.Equal(t, Present(12.0), f.TemperatureC)

	f = DecodeSynop(report("11508 80402 11120"), testStation)
	assert.Equal(t, Present(-12.0), f.TemperatureC)

	f = DecodeSynop(report("11508 80402 10999"), testStation)
	require.NotNil(t, f.TemperatureC)
	assert.True(t, f.TemperatureC.Missing)
}

func TestDecodeSynop_SectionSwitch(t *testing.T) {
	f := DecodeSynop(report("11508 80402 10301 20100 333 10301 21012"), testStation)

	assert.Equal(t, Present(30.1), f.TemperatureC)
	assert.Equal(t, Present(10.0), f.DewPointC)
	assert.Equal(t, Present(30.1), f.MaxTempC)
	assert.Equal(t, Present(-1.2), f.MinTempC)

	f = DecodeSynop(report("11508 80402 333 10301"), testStation)
	assert.Nil(t, f.TemperatureC, "section 3 group must not set temperature")
	assert.Equal(t, Present(30.1), f.MaxTempC)
}

func TestDecodeSynop_Section3IgnoresSection1Groups(t *testing.T) {
	f := DecodeSynop(report("11508 80402 333 40146 60121 71022 85820"), testStation)
	assert.Nil(t, f.PressureHPa)
	assert.Nil(t, f.PrecipAmountMm)
	assert.Nil(t, f.PresentWeatherCode)
	assert.Nil(t, f.LowCloudAmountOctas)
}

func TestDecodeSynop_Section3Tendency(t *testing.T) {
	f := DecodeSynop(report("11508 80402 52008 333 58041"), testStation)
	assert.Equal(t, Present(8), f.PressureTendencyCharacteristic)
	assert.Equal(t, Present(-4.1), f.PressureChange3h)
}

func TestDecodeSynop_IndicatorGroup(t *testing.T) {
	t.Run("no significant weather", func(t *testing.T) {
		f := DecodeSynop(report("32960 70000"), testStation)
		assert.Equal(t, Present(noSignificantWeather), f.PresentWeatherCode)
		assert.Equal(t, Present(false), f.WeatherObserved)
		assert.Equal(t, Present(9), f.CloudBaseHeightCode)
		assert.Equal(t, Present(10.0), f.VisibilityKm)
	})

	t.Run("weather group expected", func(t *testing.T) {
		f := DecodeSynop(report("11508 70000"), testStation)
		assert.Nil(t, f.PresentWeatherCode)
		assert.Nil(t, f.WeatherObserved)
		assert.Equal(t, Present(5), f.CloudBaseHeightCode)
		assert.Equal(t, Present(0.8), f.VisibilityKm)
	})

	t.Run("missing height and visibility", func(t *testing.T) {
		f := DecodeSynop(report("41/// 70000"), testStation)
		assert.Equal(t, Absent[int](), f.CloudBaseHeightCode)
		assert.Equal(t, Absent[float64](), f.VisibilityKm)
	})

	t.Run("undefined visibility code", func(t *testing.T) {
		f := DecodeSynop(report("41553 70000"), testStation)
		assert.Equal(t, Absent[float64](), f.VisibilityKm)
	})

	t.Run("visibility rounded", func(t *testing.T) {
		f := DecodeSynop(report("41590 70000"), testStation)
		assert.Equal(t, Present(0.1), f.VisibilityKm)
	})

	t.Run("wrong length is skipped but consumed", func(t *testing.T) {
		f := DecodeSynop(report("4159 80402 10120"), testStation)
		assert.Nil(t, f.VisibilityKm)
		assert.Equal(t, Present(8), f.CloudCoverOctas)
		assert.Equal(t, Present(12.0), f.TemperatureC)
	})
}

func TestDecodeSynop_WindGroup(t *testing.T) {
	tests := []struct {
		name      string
		group     string
		octas     *Field[int]
		direction *Field[WindDirection]
		speed     *Field[int]
	}{
		{"calm", "00000", Present(0), Present(WindDirection{}), Present(0)},
		{"variable", "59915", Present(5), Present(WindDirection{Variable: true}), Present(15)},
		{"from east", "80912", Present(8), Present(WindDirection{Degrees: 90}), Present(12)},
		{"obscured sky", "93605", Present(9), Present(WindDirection{Degrees: 360}), Present(5)},
		{"missing cover", "/2010", Absent[int](), Present(WindDirection{Degrees: 200}), Present(10)},
		{"missing wind", "7////", Present(7), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DecodeSynop(report("11508 "+tt.group), testStation)
			assert.Equal(t, tt.octas, f.CloudCoverOctas)
			assert.Equal(t, tt.direction, f.WindDirectionDeg)
			assert.Equal(t, tt.speed, f.WindSpeedKt)
		})
	}
}

func TestDecodeSynop_VariableGroups(t *testing.T) {
	f := DecodeSynop(report("11508 80402 10120 20100 39854 40146 58041 60002 71022 85820"), testStation)

	want := DecodedFields{
		CloudBaseHeightCode:            Present(5),
		VisibilityKm:                   Present(0.8),
		CloudCoverOctas:                Present(8),
		WindDirectionDeg:               Present(WindDirection{Degrees: 40}),
		WindSpeedKt:                    Present(2),
		TemperatureC:                   Present(12.0),
		DewPointC:                      Present(10.0),
		StationPressureHPa:             Present(985.4),
		PressureHPa:                    Present(1014.6),
		PressureTendencyCharacteristic: Present(8),
		PressureChange3h:               Present(-4.1),
		PrecipAmountMm:                 Present(0.0),
		PresentWeatherCode:             Present("10"),
		LowCloudAmountOctas:            Present(5),
		LowCloudTypeCode:               Present(8),
		MidCloudTypeCode:               Present(2),
		HighCloudTypeCode:              Present(0),
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("decoded fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSynop_BadGroupDoesNotBlockOthers(t *testing.T) {
	fields, unparsed := decodeSynop(report("11508 80402 1A2B3 20231 59999 6//// 40050"), testStation)

	assert.Nil(t, fields.TemperatureC)
	assert.Nil(t, fields.PressureTendencyCharacteristic)
	assert.Nil(t, fields.PrecipAmountMm)
	assert.Equal(t, Present(23.1), fields.DewPointC)
	assert.Equal(t, Present(1005.0), fields.PressureHPa)
	assert.Equal(t, 3, unparsed)
}

func TestDecodeSynop_StationNotFound(t *testing.T) {
	// Without the anchor every token is treated as Section 1 onward.
	f := DecodeSynop("32960 70000 10120", "99999")
	assert.Equal(t, Present(10.0), f.VisibilityKm)
	assert.Equal(t, Present(7), f.CloudCoverOctas)
	assert.Equal(t, Present(12.0), f.TemperatureC)
}

func TestDecodeSynop_Empty(t *testing.T) {
	assert.Zero(t, DecodeSynop("", testStation))
	assert.Zero(t, DecodeSynop(report(""), testStation))
}

func TestDecodeSynop_CloudGroupPartial(t *testing.T) {
	f := DecodeSynop(report("11508 80402 80/9/"), testStation)
	assert.Equal(t, Present(0), f.LowCloudAmountOctas)
	assert.Nil(t, f.LowCloudTypeCode)
	assert.Equal(t, Present(9), f.MidCloudTypeCode)
	assert.Nil(t, f.HighCloudTypeCode)
}

func TestApplyGroup(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		group   string
		ok      bool
		want    DecodedFields
	}{
		{"temperature", Section1, "11052", true, DecodedFields{TemperatureC: Present(-5.2)}},
		{"dew point", Section1, "20031", true, DecodedFields{DewPointC: Present(3.1)}},
		{"station pressure", Section1, "30012", true, DecodedFields{StationPressureHPa: Present(1001.2)}},
		{"sea level pressure", Section1, "49987", true, DecodedFields{PressureHPa: Present(998.7)}},
		{"precipitation", Section1, "60121", true, DecodedFields{PrecipAmountMm: Present(12.0)}},
		{"present weather", Section1, "76166", true, DecodedFields{PresentWeatherCode: Present("61")}},
		{"max temperature", Section3, "10254", true, DecodedFields{MaxTempC: Present(25.4)}},
		{"min temperature", Section3, "21013", true, DecodedFields{MinTempC: Present(-1.3)}},
		{"bad temperature", Section1, "10X52", false, DecodedFields{}},
		{"bad pressure", Section1, "4ABCD", false, DecodedFields{}},
		{"undefined in section 3", Section3, "70000", true, DecodedFields{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got DecodedFields
			assert.Equal(t, tt.ok, applyGroup(tt.section, tt.group, &got))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
