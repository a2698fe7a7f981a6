package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		expectOK   bool
		postalCode string
		areaName   string
	}{
		{
			name:       "plain heading",
			text:       "167 72 Bromma",
			expectOK:   true,
			postalCode: "167 72",
			areaName:   "Bromma",
		},
		{
			name:       "heading with surrounding text",
			text:       "forts. 114 25 Stockholm",
			expectOK:   true,
			postalCode: "114 25",
			areaName:   "Stockholm",
		},
		{
			name:       "swedish characters in area name",
			text:       "181 30 Lidingö",
			expectOK:   true,
			postalCode: "181 30",
			areaName:   "Lidingö",
		},
		{
			name:     "record line is not a heading",
			text:     "Andersson Karl, Storgatan 12 45 23 104 N 630 000",
			expectOK: false,
		},
		{
			name:     "postal code without area name",
			text:     "167 72",
			expectOK: false,
		},
		{
			name:     "empty line",
			text:     "",
			expectOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heading, ok := ParseHeading(tt.text)
			if !tt.expectOK {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.postalCode, heading.PostalCode)
			assert.Equal(t, tt.areaName, heading.AreaName)
		})
	}
}

func TestIsNoiseLine(t *testing.T) {
	tests := []struct {
		text  string
		noise bool
	}{
		{"Namn, adress Å IÅ LR", true},
		{"Prova gratis på ratsit.se", true},
		{"Andersson Karl, Storgatan 12 45 23 104 N 630 000", false},
		{"167 72 Bromma", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.noise, IsNoiseLine(tt.text), "line: %s", tt.text)
	}
}

func TestParseRecordLine(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expectOK bool
		want     Record
	}{
		{
			name:     "standard record",
			text:     "Andersson Karl, Storgatan 12 45 23 104 N 630 000 275 896",
			expectOK: true,
			want: Record{
				Name:       "Andersson Karl",
				Address:    "Storgatan 12",
				Age:        45,
				IncomeYear: 2023,
				SalaryRank: 104,
				Salary:     630_000,
				Capital:    275_896,
			},
		},
		{
			name:     "fused age and income year",
			text:     "Berg Anna, Vasagatan 3 4523 87 J 412 300 -15 000",
			expectOK: true,
			want: Record{
				Name:           "Berg Anna",
				Address:        "Vasagatan 3",
				Age:            45,
				IncomeYear:     2023,
				SalaryRank:     87,
				PaymentRemarks: true,
				Salary:         412_300,
				Capital:        -15_000,
			},
		},
		{
			name:     "zero salary with capital",
			text:     "Lind Erik, Storgatan 12 67 22 3 N 0 1 250 000",
			expectOK: true,
			want: Record{
				Name:       "Lind Erik",
				Address:    "Storgatan 12",
				Age:        67,
				IncomeYear: 2022,
				SalaryRank: 3,
				Salary:     0,
				Capital:    1_250_000,
			},
		},
		{
			name:     "income year before 2000",
			text:     "Ek Maria, Birkagatan 7 55 98 12 N 180 000 0",
			expectOK: true,
			want: Record{
				Name:       "Ek Maria",
				Address:    "Birkagatan 7",
				Age:        55,
				IncomeYear: 1998,
				SalaryRank: 12,
				Salary:     180_000,
				Capital:    0,
			},
		},
		{
			name:     "no comma separator",
			text:     "Andersson Karl Storgatan 12 45 23 104 N 630 000",
			expectOK: false,
		},
		{
			name:     "age below catalogue range",
			text:     "Svensson Bo, Gatan 1 12 23 5 N 100 000 0",
			expectOK: false,
		},
		{
			name:     "name too short",
			text:     "Ab, Gatan 1 45 23 5 N 100 000 0",
			expectOK: false,
		},
		{
			name:     "digits in name",
			text:     "Firma 3AB, Gatan 1 45 23 5 N 100 000 0",
			expectOK: false,
		},
		{
			name:     "heading line",
			text:     "167 72 Bromma",
			expectOK: false,
		},
		{
			name:     "noise line",
			text:     "Namn, adress Å IÅ LR",
			expectOK: false,
		},
		{
			name:     "empty line",
			text:     "",
			expectOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ParseRecordLine(tt.text)
			if !tt.expectOK {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			require.NotNil(t, rec)

			assert.Equal(t, tt.want.Name, rec.Name)
			assert.Equal(t, tt.want.Address, rec.Address)
			assert.Equal(t, tt.want.Age, rec.Age)
			assert.Equal(t, tt.want.IncomeYear, rec.IncomeYear)
			assert.Equal(t, tt.want.SalaryRank, rec.SalaryRank)
			assert.Equal(t, tt.want.PaymentRemarks, rec.PaymentRemarks)
			assert.Equal(t, tt.want.Salary, rec.Salary)
			assert.Equal(t, tt.want.Capital, rec.Capital)

			// Heading fields are tagged by the caller, never by the parser
			assert.Empty(t, rec.PostalCode)
			assert.Empty(t, rec.AreaName)
		})
	}
}
