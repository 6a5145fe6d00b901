package orders

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParseIndexedLines reads the legacy form encoding of order lines:
// item_id_N, item_name_N, item_quantity_N, item_price_N. Indices need
// not be contiguous; rows missing a field are dropped, not treated as
// the end of the list.
func ParseIndexedLines(values url.Values) []Line {
	indices := make(map[int]bool)
	for key := range values {
		rest, ok := strings.CutPrefix(key, "item_id_")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			indices[n] = true
		}
	}

	ordered := make([]int, 0, len(indices))
	for n := range indices {
		ordered = append(ordered, n)
	}
	sort.Ints(ordered)

	var lines []Line
	for _, n := range ordered {
		suffix := "_" + strconv.Itoa(n)
		name := values.Get("item_name" + suffix)
		qtyRaw := values.Get("item_quantity" + suffix)
		priceRaw := values.Get("item_price" + suffix)
		if name == "" || qtyRaw == "" || priceRaw == "" {
			continue
		}

		id, _ := strconv.ParseUint(values.Get("item_id"+suffix), 10, 64)
		qty, err := strconv.Atoi(qtyRaw)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(priceRaw, 64)
		if err != nil {
			continue
		}

		lines = append(lines, Line{
			ItemID:   uint(id),
			Name:     name,
			Quantity: qty,
			Price:    price,
		})
	}
	return lines
}
