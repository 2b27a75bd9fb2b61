package ports

import "testing"

func TestQuery_String(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"equal", Equal("accountId", "A1"), `{"method":"equal","attribute":"accountId","values":["A1"]}`},
		{"search", Search("name", "pizza"), `{"method":"search","attribute":"name","values":["pizza"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
