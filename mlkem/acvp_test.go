package mlkem

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"testing"
)

type hexBytes []byte

func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

func readVectors(t *testing.T, dir string, prompt, results any) {
	t.Helper()
	for _, v := range []struct {
		name string
		dst  any
	}{{"prompt", prompt}, {"expectedResults", results}} {
		f, err := os.Open("testdata/" + dir + "/" + v.name + ".json.gz")
		if err != nil {
			t.Fatalf("Could not read test data: %v", err)
		}
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			t.Fatal(err)
		}
		data, err := io.ReadAll(r)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(data, v.dst); err != nil {
			t.Fatal(err)
		}
	}
}

func parametersByName(name string) *Parameters {
	for _, p := range ParameterSets() {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

type resultKey struct {
	tgID, tcID int
}

func TestACVPKeyGen(t *testing.T) {
	var prompt struct {
		TestGroups []struct {
			TgID         int    `json:"tgId"`
			ParameterSet string `json:"parameterSet"`
			Tests        []struct {
				TcID int      `json:"tcId"`
				D    hexBytes `json:"d"`
				Z    hexBytes `json:"z"`
			} `json:"tests"`
		} `json:"testGroups"`
	}
	var results struct {
		TestGroups []struct {
			TgID  int `json:"tgId"`
			Tests []struct {
				TcID int      `json:"tcId"`
				Ek   hexBytes `json:"ek"`
				Dk   hexBytes `json:"dk"`
			} `json:"tests"`
		} `json:"testGroups"`
	}
	readVectors(t, "ML-KEM-keyGen-FIPS203", &prompt, &results)

	type keys struct{ ek, dk []byte }
	want := make(map[resultKey]keys)
	for _, group := range results.TestGroups {
		for _, test := range group.Tests {
			want[resultKey{group.TgID, test.TcID}] = keys{test.Ek, test.Dk}
		}
	}

	for _, group := range prompt.TestGroups {
		p := parametersByName(group.ParameterSet)
		if p == nil {
			t.Fatalf("tgId=%d: unknown parameter set %q", group.TgID, group.ParameterSet)
		}
		t.Run(p.Name(), func(t *testing.T) {
			for _, test := range group.Tests {
				expected, ok := want[resultKey{group.TgID, test.TcID}]
				if !ok {
					t.Fatalf("Missing result for tgId=%d, tcId=%d", group.TgID, test.TcID)
				}
				dk, err := NewDecapsulationKeyFromSeed(p, append(test.D, test.Z...))
				if err != nil {
					t.Fatalf("tcId=%d: %v", test.TcID, err)
				}
				if ek := dk.EncapsulationKey().Bytes(); !bytes.Equal(ek, expected.ek) {
					t.Errorf("tcId=%d: encapsulation key mismatch\ngot:  %x\nwant: %x", test.TcID, ek, expected.ek)
				}
				if b := dk.Bytes(); !bytes.Equal(b, expected.dk) {
					t.Errorf("tcId=%d: decapsulation key mismatch\ngot:  %x\nwant: %x", test.TcID, b, expected.dk)
				}
			}
		})
	}
}

func TestACVPEncapDecap(t *testing.T) {
	var prompt struct {
		TestGroups []struct {
			TgID         int      `json:"tgId"`
			ParameterSet string   `json:"parameterSet"`
			Function     string   `json:"function"`
			Dk           hexBytes `json:"dk"`
			Tests        []struct {
				TcID int      `json:"tcId"`
				Ek   hexBytes `json:"ek"`
				M    hexBytes `json:"m"`
				C    hexBytes `json:"c"`
			} `json:"tests"`
		} `json:"testGroups"`
	}
	var results struct {
		TestGroups []struct {
			TgID  int `json:"tgId"`
			Tests []struct {
				TcID int      `json:"tcId"`
				C    hexBytes `json:"c"`
				K    hexBytes `json:"k"`
			} `json:"tests"`
		} `json:"testGroups"`
	}
	readVectors(t, "ML-KEM-encapDecap-FIPS203", &prompt, &results)

	type output struct{ c, k []byte }
	want := make(map[resultKey]output)
	for _, group := range results.TestGroups {
		for _, test := range group.Tests {
			want[resultKey{group.TgID, test.TcID}] = output{test.C, test.K}
		}
	}

	for _, group := range prompt.TestGroups {
		p := parametersByName(group.ParameterSet)
		if p == nil {
			t.Fatalf("tgId=%d: unknown parameter set %q", group.TgID, group.ParameterSet)
		}
		t.Run(p.Name()+"/"+group.Function, func(t *testing.T) {
			var dk *DecapsulationKey
			switch group.Function {
			case "encapsulation":
			case "decapsulation":
				var err error
				if dk, err = NewDecapsulationKey(p, group.Dk); err != nil {
					t.Fatalf("tgId=%d: %v", group.TgID, err)
				}
			default:
				t.Fatalf("tgId=%d: unknown function %q", group.TgID, group.Function)
			}

			for _, test := range group.Tests {
				expected, ok := want[resultKey{group.TgID, test.TcID}]
				if !ok {
					t.Fatalf("Missing result for tgId=%d, tcId=%d", group.TgID, test.TcID)
				}
				if dk != nil {
					k, err := dk.Decapsulate(test.C)
					if err != nil {
						t.Fatalf("tcId=%d: %v", test.TcID, err)
					}
					if !bytes.Equal(k, expected.k) {
						t.Errorf("tcId=%d: shared key mismatch\ngot:  %x\nwant: %x", test.TcID, k, expected.k)
					}
					continue
				}

				ek, err := NewEncapsulationKey(p, test.Ek)
				if err != nil {
					t.Fatalf("tcId=%d: %v", test.TcID, err)
				}
				c, k, err := ek.EncapsulateDerand(test.M)
				if err != nil {
					t.Fatalf("tcId=%d: %v", test.TcID, err)
				}
				if !bytes.Equal(c, expected.c) {
					t.Errorf("tcId=%d: ciphertext mismatch\ngot:  %x\nwant: %x", test.TcID, c, expected.c)
				}
				if !bytes.Equal(k, expected.k) {
					t.Errorf("tcId=%d: shared key mismatch\ngot:  %x\nwant: %x", test.TcID, k, expected.k)
				}
			}
		})
	}
}
