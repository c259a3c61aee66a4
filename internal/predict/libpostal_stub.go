//go:build !libpostal

package predict

const nativeParserAvailable = false

func nativePredict(string) *Prediction {
	return nil
}
