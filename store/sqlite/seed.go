/*
seed.go - Fixture loading for users and candidates

PURPOSE:
  The roster and the electorate are reference data, not runtime state.
  They are loaded wholesale from a YAML fixture (or the built-in demo
  fixture) by the -seed flag and by tests. Seeding is a full reload and is
  idempotent: the same fixture always yields the same end state.

FIXTURE FORMAT:
  candidates:
    - name: Alice Stone
      party: National Progress Party
      sex: female
  users:
    - name: Taro Yamada
      address: 1-2-3 Chiyoda, Tokyo
      mynumber: "123456789012"
      votes: 10

  IDs are assigned from listing order (1-based), which fixes the
  discovery order used for ranking tie-breaks.
*/
package sqlite

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML seed document.
type Fixture struct {
	Candidates []FixtureCandidate `yaml:"candidates"`
	Users      []FixtureUser      `yaml:"users"`
}

type FixtureCandidate struct {
	Name  string `yaml:"name"`
	Party string `yaml:"party"`
	Sex   string `yaml:"sex"`
}

type FixtureUser struct {
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	MyNumber string `yaml:"mynumber"`
	Votes    int64  `yaml:"votes"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// Seed replaces all users and candidates with the fixture contents and
// clears any existing votes. Safe to call repeatedly.
func (s *Store) Seed(ctx context.Context, f *Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, table := range []string{"votes", "voices", "users", "candidates"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for i, c := range f.Candidates {
		_, err := sqlTx.ExecContext(ctx,
			"INSERT INTO candidates (id, name, political_party, sex) VALUES (?, ?, ?, ?)",
			i+1, c.Name, c.Party, c.Sex,
		)
		if err != nil {
			return fmt.Errorf("failed to seed candidate %q: %w", c.Name, err)
		}
	}

	for i, u := range f.Users {
		_, err := sqlTx.ExecContext(ctx,
			"INSERT INTO users (id, name, address, mynumber, votes) VALUES (?, ?, ?, ?, ?)",
			i+1, u.Name, u.Address, u.MyNumber, u.Votes,
		)
		if err != nil {
			return fmt.Errorf("failed to seed user %q: %w", u.Name, err)
		}
	}

	return sqlTx.Commit()
}

// DemoFixture builds the default election: thirty candidates spread over
// four parties, and a small electorate with mixed budgets.
func DemoFixture() *Fixture {
	parties := []string{
		"National Progress Party",
		"Citizens Alliance",
		"Green Future Party",
		"Liberty Union",
	}
	surnames := []string{"Sato", "Suzuki", "Takahashi", "Tanaka", "Watanabe", "Ito"}
	given := []struct {
		name string
		sex  string
	}{
		{"Ichiro", "male"},
		{"Jiro", "male"},
		{"Hanako", "female"},
		{"Yuko", "female"},
		{"Saburo", "male"},
	}

	f := &Fixture{}
	for _, surname := range surnames {
		for _, g := range given {
			f.Candidates = append(f.Candidates, FixtureCandidate{
				Name:  surname + " " + g.name,
				Party: parties[len(f.Candidates)%len(parties)],
				Sex:   g.sex,
			})
		}
	}

	for i := 0; i < 50; i++ {
		f.Users = append(f.Users, FixtureUser{
			Name:     fmt.Sprintf("Voter %02d", i+1),
			Address:  fmt.Sprintf("%d-%d-%d Chiyoda, Tokyo", i%9+1, i%7+1, i%5+1),
			MyNumber: fmt.Sprintf("%012d", 100000000000+i),
			Votes:    int64(5 + i%16),
		})
	}
	return f
}
