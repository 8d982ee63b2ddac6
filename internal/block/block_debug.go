//go:build voxel_debug

package block

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
