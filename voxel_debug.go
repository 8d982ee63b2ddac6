//go:build voxel_debug

package voxel

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
