// pictures.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package tello

import (
	"fmt"
	"os"
	"sort"
)

// chunksPerPiece is how many chunks the drone sends before expecting a
// piece acknowledgement.
const chunksPerPiece = 8

// TakePicture asks the Tello to take a JPEG snapshot. The returned channel
// resolves when the drone accepts the request; the picture itself arrives
// via the file transfer flow and is collected with SaveAllPics.
func (tello *Tello) TakePicture() (<-chan error, error) {
	return tello.sendPacketCommand(ptSet, msgDoTakePic, nil)
}

// handleFileSize starts a file transfer announced by the drone, typically
// following TakePicture.
func (tello *Tello) handleFileSize(pl []byte) {
	if len(pl) < 7 {
		return
	}
	fType, fSize, fID := payloadToFileInfo(pl)
	if fType != ftJPEG {
		log.Warnf("unexpected file type %d announced, accepting anyway", fType)
	}
	tello.fileMu.Lock()
	tello.fileTemp = fileInternal{fID: fID, filetype: fType, expectedSize: int(fSize)}
	tello.fileMu.Unlock()
	log.Debugf("expecting file %d of %d bytes", fID, fSize)
	tello.sendFileSize()
}

// handleFileChunk stores one chunk of an in-progress file transfer,
// acknowledging each completed piece and closing out the transfer when the
// expected byte count has arrived. Chunks are resent by the drone until
// their piece is acknowledged, so duplicates are dropped.
func (tello *Tello) handleFileChunk(pl []byte) {
	if len(pl) < 13 {
		return
	}
	fc := payloadToFileChunk(pl)

	tello.fileMu.Lock()
	if fc.fID != tello.fileTemp.fID {
		tello.fileMu.Unlock()
		log.Debugf("dropping chunk for unexpected file ID %d", fc.fID)
		return
	}
	for int(fc.pieceNum) >= len(tello.fileTemp.pieces) {
		tello.fileTemp.pieces = append(tello.fileTemp.pieces, filePiece{fID: fc.fID})
	}
	piece := &tello.fileTemp.pieces[fc.pieceNum]
	for _, c := range piece.chunks {
		if c.chunkNum == fc.chunkNum {
			tello.fileMu.Unlock()
			return
		}
	}
	piece.chunks = append(piece.chunks, fc)
	piece.numChunks++
	tello.fileTemp.accumSize += int(fc.chunkLen)

	pieceComplete := piece.numChunks == chunksPerPiece
	fileComplete := tello.fileTemp.expectedSize > 0 && tello.fileTemp.accumSize >= tello.fileTemp.expectedSize
	fID := tello.fileTemp.fID
	accum := tello.fileTemp.accumSize
	if fileComplete {
		tello.reassembleFile()
	}
	tello.fileMu.Unlock()

	switch {
	case fileComplete:
		tello.sendFileAckPiece(1, fID, fc.pieceNum)
		tello.sendFileDone(fID, accum)
		log.Infof("received complete file of %d bytes", accum)
	case pieceComplete:
		tello.sendFileAckPiece(0, fID, fc.pieceNum)
	}
}

func (tello *Tello) sendFileSize() {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase == Disconnected {
		return
	}
	tello.ctrlSeq++
	if _, err := tello.ctrlConn.Write(packetToBuffer(newPacket(ptData1, msgFileSize, tello.ctrlSeq, 1))); err != nil {
		tello.disconnectLocked(err)
	}
}

func (tello *Tello) sendFileAckPiece(done byte, fID uint16, pieceNum uint32) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase == Disconnected {
		return
	}
	tello.ctrlSeq++
	pkt := newPacket(ptData1, msgFileData, tello.ctrlSeq, 7)
	pkt.payload[0] = done
	pkt.payload[1] = byte(fID)
	pkt.payload[2] = byte(fID >> 8)
	pkt.payload[3] = byte(pieceNum)
	pkt.payload[4] = byte(pieceNum >> 8)
	pkt.payload[5] = byte(pieceNum >> 16)
	pkt.payload[6] = byte(pieceNum >> 24)
	if _, err := tello.ctrlConn.Write(packetToBuffer(pkt)); err != nil {
		tello.disconnectLocked(err)
	}
}

func (tello *Tello) sendFileDone(fID uint16, size int) {
	tello.ctrlMu.Lock()
	defer tello.ctrlMu.Unlock()
	if tello.phase == Disconnected {
		return
	}
	tello.ctrlSeq++
	pkt := newPacket(ptGet, msgFileDone, tello.ctrlSeq, 6)
	pkt.payload[0] = byte(fID)
	pkt.payload[1] = byte(fID >> 8)
	pkt.payload[2] = byte(size)
	pkt.payload[3] = byte(size >> 8)
	pkt.payload[4] = byte(size >> 16)
	pkt.payload[5] = byte(size >> 24)
	if _, err := tello.ctrlConn.Write(packetToBuffer(pkt)); err != nil {
		tello.disconnectLocked(err)
	}
}

// reassembleFile reassembles the chunked file in tello.fileTemp into a
// contiguous byte array appended to tello.files. The caller holds fileMu.
func (tello *Tello) reassembleFile() {
	var fd fileData
	fd.fileType = tello.fileTemp.filetype
	fd.fileSize = tello.fileTemp.accumSize
	// pieces are indexed in arrival order, but the chunks within each
	// piece may have arrived out of order
	for _, p := range tello.fileTemp.pieces {
		if p.numChunks > 1 {
			sort.Slice(p.chunks, func(i, j int) bool {
				return p.chunks[i].chunkNum < p.chunks[j].chunkNum
			})
		}
		for _, c := range p.chunks {
			fd.fileBytes = append(fd.fileBytes, c.chunkData...)
		}
	}
	tello.files = append(tello.files, fd)
	tello.fileTemp = fileInternal{}
}

// NumPics returns the number of JPEG pictures we are storing in memory.
func (tello *Tello) NumPics() (np int) {
	tello.fileMu.Lock()
	defer tello.fileMu.Unlock()
	for _, f := range tello.files {
		if f.fileType == ftJPEG {
			np++
		}
	}
	return np
}

// SaveAllPics writes all stored JPEG pictures to disk as <prefix>_<n>.jpg,
// returning the number written. Successfully written pictures are removed
// from memory.
func (tello *Tello) SaveAllPics(prefix string) (np int, err error) {
	tello.fileMu.Lock()
	defer tello.fileMu.Unlock()
	var kept []fileData
	for _, f := range tello.files {
		if f.fileType != ftJPEG {
			kept = append(kept, f)
			continue
		}
		if err == nil {
			filename := fmt.Sprintf("%s_%d.jpg", prefix, np)
			if err = os.WriteFile(filename, f.fileBytes, 0644); err == nil {
				np++
				continue
			}
		}
		kept = append(kept, f)
	}
	tello.files = kept
	return np, err
}
