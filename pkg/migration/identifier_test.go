// SPDX-License-Identifier: Apache-2.0

package migration

import "testing"

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		wantErr    bool
		wantVer    string
		wantDesc   string
		wantVector []int64
	}{
		{name: "simple", filename: "V1__create_table.sql", wantVer: "1", wantDesc: "create_table", wantVector: []int64{1}},
		{name: "dotted version", filename: "V2.1__add_index.sql", wantVer: "2.1", wantDesc: "add_index", wantVector: []int64{2, 1}},
		{name: "underscored version", filename: "V2026_02_24_1__seed_data.sql", wantVer: "2026_02_24_1", wantDesc: "seed_data", wantVector: []int64{2026, 2, 24, 1}},
		{name: "leading zero in version does not affect value", filename: "V01__init.sql", wantVer: "01", wantVector: []int64{1}},
		{name: "missing V prefix", filename: "1__bad.sql", wantErr: true},
		{name: "uppercase description", filename: "V1__Bad.sql", wantErr: true},
		{name: "missing double underscore", filename: "V1_bad.sql", wantErr: true},
		{name: "non-numeric version", filename: "Vabc__bad.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := parseIdentifier(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got none", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.filename, err)
			}
			if id.versionDisplay != tt.wantVer {
				t.Errorf("versionDisplay = %q, want %q", id.versionDisplay, tt.wantVer)
			}
			if tt.wantDesc != "" && id.description != tt.wantDesc {
				t.Errorf("description = %q, want %q", id.description, tt.wantDesc)
			}
			if len(tt.wantVector) > 0 {
				if len(id.version) != len(tt.wantVector) {
					t.Fatalf("version = %v, want %v", id.version, tt.wantVector)
				}
				for i := range tt.wantVector {
					if id.version[i] != tt.wantVector[i] {
						t.Errorf("version[%d] = %d, want %d", i, id.version[i], tt.wantVector[i])
					}
				}
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		a, b []int64
		want int
	}{
		{name: "equal", a: []int64{2}, b: []int64{2}, want: 0},
		{name: "shorter is less when prefix equal", a: []int64{2}, b: []int64{2, 1}, want: -1},
		{name: "longer is greater when prefix equal", a: []int64{2, 1}, b: []int64{2}, want: 1},
		{name: "numeric not lexical: 10 after 2", a: []int64{2}, b: []int64{10}, want: -1},
		{name: "date-style versions compare component-wise", a: []int64{2026, 2, 24, 1}, b: []int64{2026, 2, 24, 2}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareVersions(tt.a, tt.b)
			if (got < 0) != (tt.want < 0) || (got > 0) != (tt.want > 0) || (got == 0) != (tt.want == 0) {
				t.Errorf("compareVersions(%v, %v) = %d, want sign of %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDisplayDescription(t *testing.T) {
	if got := displayDescription("add_user_table"); got != "add user table" {
		t.Errorf("displayDescription = %q, want %q", got, "add user table")
	}
}
