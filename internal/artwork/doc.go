// Package artwork drops artist images into library folders.
package artwork
