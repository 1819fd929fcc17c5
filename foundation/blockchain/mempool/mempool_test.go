package mempool_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
		exp  []string
	}

	tt := []table{
		{
			name: "arrival",
			txs: []database.Tx{
				{ID: "c", Amount: 10, Sender: "A", Recipient: "B"},
				{ID: "a", Amount: 50, Sender: "B", Recipient: "C"},
				{ID: "b", Amount: 100, Sender: "C", Recipient: "A"},
			},
			exp: []string{"c", "a", "b"},
		},
		{
			name: "duplicates",
			txs: []database.Tx{
				{ID: "a", Amount: 10, Sender: "A", Recipient: "B"},
				{ID: "b", Amount: 50, Sender: "B", Recipient: "C"},
				{ID: "a", Amount: 10, Sender: "A", Recipient: "B"},
			},
			exp: []string{"a", "b"},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, tx := range tst.txs {
						mp.Add(tx)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add new transactions.", success, testID)

					got := mp.Copy()
					if len(got) != len(tst.exp) {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, len(got))
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, len(tst.exp))
						t.Fatalf("\t%s\tTest %d:\tShould get back the right number of transactions.", failed, testID)
					}

					for i, tx := range got {
						if tx.ID != tst.exp[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.ID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back transactions in arrival order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back transactions in arrival order.", success, testID)

					mp.Delete(tst.exp[0])
					if mp.Contains(tst.exp[0]) || mp.Count() != len(tst.exp)-1 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to delete a transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to delete a transaction.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate the pool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestAddIdempotent(t *testing.T) {
	mp := mempool.New()
	tx := database.NewTx(5, "A", "B")

	if !mp.Add(tx) {
		t.Fatalf("Should add a new transaction.")
	}

	if mp.Add(tx) {
		t.Fatalf("Should not add the same transaction twice.")
	}

	if mp.Count() != 1 {
		t.Logf("got: %d", mp.Count())
		t.Logf("exp: %d", 1)
		t.Fatalf("Should hold a single transaction.")
	}
}

func TestReplace(t *testing.T) {
	mp := mempool.New()
	mp.Add(database.Tx{ID: "old"})

	mp.Replace([]database.Tx{{ID: "x"}, {ID: "y"}, {ID: "x"}})

	if mp.Contains("old") {
		t.Fatalf("Should drop the previous transactions.")
	}

	got := mp.Copy()
	if len(got) != 2 || got[0].ID != "x" || got[1].ID != "y" {
		t.Logf("got: %v", got)
		t.Fatalf("Should hold the replacement transactions in order without duplicates.")
	}
}
