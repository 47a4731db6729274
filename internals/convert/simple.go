package convert

import (
	"asset-exchange/internals/core/domain"
)

// SimpleConverter is the single-hop sibling of Converter: it only does a
// direct or reverse lookup on the conversion map, no graph or path search.
// Its failure policy is materially different and deliberate: on a total miss
// it returns the original amount unchanged (degrade to identity) instead of
// reporting an error. Pair it with BuildLenientConversionMap.
type SimpleConverter struct {
	conversionMap domain.ConversionMap
}

func NewSimpleConverter(conversionMap domain.ConversionMap) *SimpleConverter {
	return &SimpleConverter{conversionMap: conversionMap}
}

// ConvertAmount converts using a single direct-or-reverse rate lookup,
// falling back to the unconverted amount when no rate is known.
func (c *SimpleConverter) ConvertAmount(req domain.ConversionRequest) float64 {
	if req.FromSymbolID == req.ToSymbolID {
		return req.Amount
	}
	if rate, ok := c.conversionMap[req.FromSymbolID][req.ToSymbolID][req.Date]; ok {
		return req.Amount * rate
	}
	if rate, ok := c.conversionMap[req.ToSymbolID][req.FromSymbolID][req.Date]; ok {
		return req.Amount / rate
	}
	return req.Amount
}
