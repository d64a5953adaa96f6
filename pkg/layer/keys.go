package layer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Keys assigns every node of f a key that is stable across runs: the hex
// SHA-256 of its command, size and creation time. The content id is not
// used since it is often [MissingID]. Nodes that hash alike get "-2", "-3",
// ... suffixes in [Walk] order, so keys are unique within f.
func Keys(f Forest) map[*Node]string {
	keys := make(map[*Node]string)
	seen := make(map[string]int)
	Walk(f, func(n, _ *Node, _ int) bool {
		k := contentKey(n)
		seen[k]++
		if c := seen[k]; c > 1 {
			k += "-" + strconv.Itoa(c)
		}
		keys[n] = k
		return true
	})
	return keys
}

func contentKey(n *Node) string {
	sum := sha256.Sum256([]byte(n.CreatedBy + strconv.FormatInt(n.Size, 10) + strconv.FormatInt(n.Created, 10)))
	return hex.EncodeToString(sum[:])
}
