package ibl

// these functions are only exported when running tests

var AccumulateBrdf = accumulateBrdf
var Clamp01 = clamp01
